// Command fieldgen generates a random field file in the format cmd/fluidsim
// expects (spec.md §6), the Go-native companion to the original
// FieldGenerator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pthm-cable/fluidsim/fieldio"
)

var (
	width  = flag.Int("width", 80, "field width in columns, including the wall border")
	height = flag.Int("height", 40, "field height in rows, including the wall border")
	output = flag.String("out", "field.txt", "output path")
	seed   = flag.Int64("seed", 1337, "RNG seed")
)

func main() {
	flag.Parse()

	if *width < 3 || *height < 3 {
		fmt.Fprintln(os.Stderr, "fieldgen: width and height must each be at least 3 (to leave room for an interior)")
		os.Exit(1)
	}

	field := fieldio.Generate(*width, *height, *seed)
	if err := field.SaveTo(*output); err != nil {
		fmt.Fprintln(os.Stderr, "fieldgen:", err)
		os.Exit(1)
	}
}
