package engine

import "github.com/pthm-cable/fluidsim/numeric"

// CellKind is the byte stored per cell: wall, gas, or water (spec.md §3).
type CellKind byte

const (
	Wall  CellKind = '#'
	Gas   CellKind = ' '
	Water CellKind = '.'
)

// velRow holds the four directional scalars for one cell, indexed by
// slotOf(dx,dy).
type velRow [4]numeric.Value

// get returns the slot for (dx,dy).
func (r *velRow) get(dx, dy int) numeric.Value { return r[slotOf(dx, dy)] }

// set stores the slot for (dx,dy).
func (r *velRow) set(dx, dy int, v numeric.Value) { r[slotOf(dx, dy)] = v }

// add accumulates dv into the slot for (dx,dy) and returns the new value.
func (r *velRow) add(dx, dy int, dv numeric.Value) numeric.Value {
	v := r.get(dx, dy).Add(dv)
	r.set(dx, dy, v)
	return v
}
