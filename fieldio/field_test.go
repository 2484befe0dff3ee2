package fieldio

import (
	"os"
	"testing"

	"github.com/pthm-cable/fluidsim/engine"
)

func TestLoadRejectsNonRectangular(t *testing.T) {
	path := t.TempDir() + "/bad.txt"
	if err := os.WriteFile(path, []byte("###\n#  #\n###\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-rectangular field")
	}
}

func TestLoadRejectsOpenBorder(t *testing.T) {
	path := t.TempDir() + "/bad.txt"
	if err := os.WriteFile(path, []byte("###\n. .\n###\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for open border")
	}
}

func TestLoadRejectsUnknownByte(t *testing.T) {
	path := t.TempDir() + "/bad.txt"
	if err := os.WriteFile(path, []byte("###\n#X#\n###\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown cell byte")
	}
}

func TestLoadValidField(t *testing.T) {
	path := t.TempDir() + "/field.txt"
	contents := "#####\n#. .#\n#   #\n#####\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Rows != 4 || f.Cols != 5 {
		t.Fatalf("dims = %dx%d, want 4x5", f.Rows, f.Cols)
	}
	if f.Cells[1][1] != engine.Water {
		t.Errorf("Cells[1][1] = %v, want Water", f.Cells[1][1])
	}
	if f.Cells[2][2] != engine.Gas {
		t.Errorf("Cells[2][2] = %v, want Gas", f.Cells[2][2])
	}
}

func TestGenerateHasWallBorder(t *testing.T) {
	f := Generate(20, 10, 42)
	for y := 0; y < f.Cols; y++ {
		if f.Cells[0][y] != engine.Wall || f.Cells[f.Rows-1][y] != engine.Wall {
			t.Fatalf("column %d: border not wall", y)
		}
	}
	for x := 0; x < f.Rows; x++ {
		if f.Cells[x][0] != engine.Wall || f.Cells[x][f.Cols-1] != engine.Wall {
			t.Fatalf("row %d: border not wall", x)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f := Generate(12, 8, 7)
	path := t.TempDir() + "/gen.txt"
	if err := f.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Rows != f.Rows || got.Cols != f.Cols {
		t.Fatalf("round-trip dims mismatch")
	}
	for x := 0; x < f.Rows; x++ {
		for y := 0; y < f.Cols; y++ {
			if got.Cells[x][y] != f.Cells[x][y] {
				t.Fatalf("round-trip mismatch at (%d,%d)", x, y)
			}
		}
	}
}
