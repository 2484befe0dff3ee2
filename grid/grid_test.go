package grid

import "testing"

func TestNewIsZeroFilled(t *testing.T) {
	g := New[int](3, 4)
	for x := 0; x < 3; x++ {
		for y := 0; y < 4; y++ {
			if v := g.At(x, y); v != 0 {
				t.Fatalf("At(%d,%d) = %d, want 0", x, y, v)
			}
		}
	}
}

func TestSetAt(t *testing.T) {
	g := New[int](2, 2)
	g.Set(1, 1, 42)
	if got := g.At(1, 1); got != 42 {
		t.Fatalf("At(1,1) = %d, want 42", got)
	}
	if got := g.At(0, 0); got != 0 {
		t.Fatalf("At(0,0) = %d, want 0", got)
	}
}

func TestRowMajorIndependence(t *testing.T) {
	g := New[int](2, 3)
	g.Set(0, 2, 1)
	g.Set(1, 0, 2)
	if g.At(0, 2) != 1 || g.At(1, 0) != 2 {
		t.Fatalf("row-major indexing collided: %v", g.Raw())
	}
}

func TestClear(t *testing.T) {
	g := New[int](2, 2)
	g.Set(0, 0, 7)
	g.Clear()
	for _, v := range g.Raw() {
		if v != 0 {
			t.Fatalf("Clear left nonzero value: %v", g.Raw())
		}
	}
}

func TestPtrMutatesInPlace(t *testing.T) {
	g := New[int](2, 2)
	p := g.Ptr(1, 0)
	*p = 99
	if g.At(1, 0) != 99 {
		t.Fatalf("Ptr mutation not observed, got %d", g.At(1, 0))
	}
}

func TestCopyFrom(t *testing.T) {
	a := New[int](2, 2)
	a.Set(0, 1, 5)
	b := New[int](2, 2)
	b.CopyFrom(a)
	if b.At(0, 1) != 5 {
		t.Fatalf("CopyFrom did not copy data")
	}
	a.Set(0, 1, 9)
	if b.At(0, 1) != 5 {
		t.Fatalf("CopyFrom aliased the source slice")
	}
}
