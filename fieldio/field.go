// Package fieldio loads and saves field files (spec.md §6) and generates
// random fields for the companion field-generator CLI.
package fieldio

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pthm-cable/fluidsim/engine"
	"github.com/pthm-cable/fluidsim/fluiderr"
)

// Field is the parsed contents of a field file: a rectangular grid of cell
// kind bytes, ready to be loaded into an engine.
type Field struct {
	Rows, Cols int
	Cells      [][]engine.CellKind
}

// Load reads a field file (spec.md §6): ASCII text, one row per line, each
// row exactly Cols bytes drawn from {'#',' ','.'}, outermost ring all wall.
func Load(path string) (*Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fluiderr.NewIOError("open field file", err)
	}
	defer f.Close()

	var rows [][]engine.CellKind
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	cols := -1
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if cols == -1 {
			cols = len(line)
		} else if len(line) != cols {
			return nil, fluiderr.NewIOError("parse field file",
				fmt.Errorf("row %d has width %d, want %d (non-rectangular field)", len(rows), len(line), cols))
		}
		row := make([]engine.CellKind, cols)
		for j, c := range []byte(line) {
			k := engine.CellKind(c)
			if k != engine.Wall && k != engine.Gas && k != engine.Water {
				return nil, fluiderr.NewIOError("parse field file",
					fmt.Errorf("row %d col %d: byte %q is not one of '#',' ','.'", len(rows), j, c))
			}
			row[j] = k
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fluiderr.NewIOError("read field file", err)
	}
	if len(rows) == 0 {
		return nil, fluiderr.NewIOError("parse field file", fmt.Errorf("empty field file"))
	}

	field := &Field{Rows: len(rows), Cols: cols, Cells: rows}
	if err := field.validateBorder(); err != nil {
		return nil, err
	}
	return field, nil
}

// validateBorder checks the spec.md §3 invariant that the outermost ring is
// all wall.
func (f *Field) validateBorder() error {
	for y := 0; y < f.Cols; y++ {
		if f.Cells[0][y] != engine.Wall || f.Cells[f.Rows-1][y] != engine.Wall {
			return fluiderr.NewIOError("validate field", fmt.Errorf("column %d: top/bottom border must be wall", y))
		}
	}
	for x := 0; x < f.Rows; x++ {
		if f.Cells[x][0] != engine.Wall || f.Cells[x][f.Cols-1] != engine.Wall {
			return fluiderr.NewIOError("validate field", fmt.Errorf("row %d: left/right border must be wall", x))
		}
	}
	return nil
}

// ApplyTo loads every cell of f into e, then recomputes dirs. e must already
// be constructed with matching Rows/Cols.
func (f *Field) ApplyTo(e *engine.Engine) {
	for x := 0; x < f.Rows; x++ {
		for y := 0; y < f.Cols; y++ {
			e.SetCell(x, y, f.Cells[x][y])
		}
	}
	e.RecomputeDirs()
}

// Save writes a field's cell kinds to path, one row per line (used by
// Field.SaveTo, which cmd/fieldgen calls).
func Save(path string, rows, cols int, at func(x, y int) engine.CellKind) error {
	f, err := os.Create(path)
	if err != nil {
		return fluiderr.NewIOError("create field file", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	buf := make([]byte, cols)
	for x := 0; x < rows; x++ {
		for y := 0; y < cols; y++ {
			buf[y] = byte(at(x, y))
		}
		if _, err := w.Write(buf); err != nil {
			return fluiderr.NewIOError("write field file", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fluiderr.NewIOError("write field file", err)
		}
	}
	return w.Flush()
}
