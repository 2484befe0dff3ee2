package engine

import "testing"

func TestSlotOfIsBijective(t *testing.T) {
	seen := map[int]Delta{}
	for _, d := range Deltas {
		s := slotOf(d.DX, d.DY)
		if other, ok := seen[s]; ok {
			t.Fatalf("slotOf(%v) collides with %v at slot %d", d, other, s)
		}
		seen[s] = d
	}
}

func TestDirSlotIsBijective(t *testing.T) {
	seen := map[int]Delta{}
	for _, d := range Deltas {
		s := dirSlot(d.DX, d.DY)
		if other, ok := seen[s]; ok {
			t.Fatalf("dirSlot(%v) collides with %v at slot %d", d, other, s)
		}
		seen[s] = d
	}
}

func TestOppositeRoundTrips(t *testing.T) {
	for _, d := range Deltas {
		o := opposite(d)
		if opposite(o) != d {
			t.Fatalf("opposite(opposite(%v)) = %v, want %v", d, opposite(o), d)
		}
		if o == d {
			t.Fatalf("opposite(%v) returned itself", d)
		}
	}
}
