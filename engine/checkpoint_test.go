package engine

import (
	"bytes"
	"testing"

	"github.com/pthm-cable/fluidsim/numeric"
)

func smallWaterField(e *Engine) {
	for x := 0; x < e.rows; x++ {
		for y := 0; y < e.cols; y++ {
			if x == 0 || y == 0 || x == e.rows-1 || y == e.cols-1 {
				e.SetCell(x, y, Wall)
			} else {
				e.SetCell(x, y, Gas)
			}
		}
	}
	e.SetCell(2, 2, Water)
	e.RecomputeDirs()
}

func TestCheckpointRoundTrip(t *testing.T) {
	types := Types{P: numeric.Fixed(32, 16), V: numeric.Fixed(32, 16), Vf: numeric.Fixed(32, 16)}
	cfg := DefaultConfig()
	e := New(types, 5, 5, cfg)
	smallWaterField(e)

	for i := 0; i < 5; i++ {
		if err := e.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := e.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored, err := Load(&buf, cfg)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Rows() != e.Rows() || restored.Cols() != e.Cols() {
		t.Fatalf("dims mismatch: got %dx%d want %dx%d", restored.Rows(), restored.Cols(), e.Rows(), e.Cols())
	}
	if restored.TickCount() != e.TickCount() {
		t.Fatalf("tick mismatch: got %d want %d", restored.TickCount(), e.TickCount())
	}
	for x := 0; x < e.Rows(); x++ {
		for y := 0; y < e.Cols(); y++ {
			if restored.CellAt(x, y) != e.CellAt(x, y) {
				t.Fatalf("cell mismatch at (%d,%d)", x, y)
			}
			if restored.PressureAt(x, y) != e.PressureAt(x, y) {
				t.Fatalf("pressure mismatch at (%d,%d): got %v want %v", x, y, restored.PressureAt(x, y), e.PressureAt(x, y))
			}
		}
	}

	if err := e.Tick(); err != nil {
		t.Fatalf("Tick original: %v", err)
	}
	if err := restored.Tick(); err != nil {
		t.Fatalf("Tick restored: %v", err)
	}
	for x := 0; x < e.Rows(); x++ {
		for y := 0; y < e.Cols(); y++ {
			if restored.PressureAt(x, y) != e.PressureAt(x, y) {
				t.Fatalf("post-tick pressure mismatch at (%d,%d): got %v want %v", x, y, restored.PressureAt(x, y), e.PressureAt(x, y))
			}
		}
	}
}
