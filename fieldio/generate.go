package fieldio

import (
	"math/rand"

	"github.com/pthm-cable/fluidsim/engine"
	"gonum.org/v1/gonum/stat/distuv"
)

// cellWeights is the interior cell-kind distribution from spec.md §6:
// roughly 1/11 wall, 3/11 water, 7/11 gas.
var cellWeights = []float64{1, 3, 7}

var cellKinds = []engine.CellKind{engine.Wall, engine.Water, engine.Gas}

// Generate produces a width x height field (spec.md §6's companion field
// generator): walls on all four borders, interior cells drawn from the
// fixed discrete distribution via a gonum categorical sampler.
func Generate(width, height int, seed int64) *Field {
	cat := distuv.NewCategorical(cellWeights, rand.New(rand.NewSource(seed)))

	rows := make([][]engine.CellKind, height)
	for x := 0; x < height; x++ {
		row := make([]engine.CellKind, width)
		for y := 0; y < width; y++ {
			if x == 0 || x == height-1 || y == 0 || y == width-1 {
				row[y] = engine.Wall
				continue
			}
			row[y] = cellKinds[int(cat.Rand())]
		}
		rows[x] = row
	}
	return &Field{Rows: height, Cols: width, Cells: rows}
}

// SaveTo writes the field to path in the spec.md §6 field-file format.
func (f *Field) SaveTo(path string) error {
	return Save(path, f.Rows, f.Cols, func(x, y int) engine.CellKind { return f.Cells[x][y] })
}
