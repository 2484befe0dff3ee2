package engine

import "github.com/pthm-cable/fluidsim/numeric"

// phaseParticleStep is tick phase 5 (spec.md §4.4): a stochastic particle
// swap pass. Returns whether any move occurred.
func (e *Engine) phaseParticleStep() bool {
	e.ut += 2
	moved := false
	for x := 0; x < e.rows; x++ {
		for y := 0; y < e.cols; y++ {
			if e.field.At(x, y) == Wall {
				continue
			}
			if e.lastUse.At(x, y) == e.ut {
				continue
			}
			s := e.eligibleSum(x, y)
			draw := e.rng.Random01(e.types.V)
			if draw.Float64() < s.Float64() {
				moved = true
				e.propagateMove(x, y, true)
			} else {
				e.propagateStop(x, y, true)
			}
		}
	}
	return moved
}

// eligibleSum sums v[x,y][d] over directions whose neighbour is non-wall,
// not yet visited this epoch, and has v >= 0 — the move probability numerator
// from spec.md §4.4's move_prob.
func (e *Engine) eligibleSum(x, y int) numeric.Value {
	row := e.velocity.Ptr(x, y)
	total := e.types.V.Zero()
	for _, d := range Deltas {
		nx, ny := x+d.DX, y+d.DY
		if nx < 0 || nx >= e.rows || ny < 0 || ny >= e.cols {
			continue
		}
		if e.field.At(nx, ny) == Wall || e.lastUse.At(nx, ny) == e.ut {
			continue
		}
		v := row.get(d.DX, d.DY)
		if v.Sign() < 0 {
			continue
		}
		total = total.Add(v)
	}
	return total
}

// propagateMove is the recursive chain-follow from spec.md §4.4.
func (e *Engine) propagateMove(x, y int, isFirst bool) bool {
	if isFirst {
		e.lastUse.Set(x, y, e.ut-1)
	} else {
		e.lastUse.Set(x, y, e.ut)
	}

	var ret bool
	var nx, ny int
	for {
		row := e.velocity.Ptr(x, y)
		var prefix [4]float64
		var eligible [4]bool
		sum := 0.0
		for i, d := range Deltas {
			cnx, cny := x+d.DX, y+d.DY
			if cnx < 0 || cnx >= e.rows || cny < 0 || cny >= e.cols ||
				e.field.At(cnx, cny) == Wall || e.lastUse.At(cnx, cny) == e.ut {
				prefix[i] = sum
				continue
			}
			v := row.get(d.DX, d.DY)
			if v.Sign() < 0 {
				prefix[i] = sum
				continue
			}
			sum += v.Float64()
			prefix[i] = sum
			eligible[i] = true
		}

		if sum == 0 {
			ret = false
			break
		}

		draw := e.rng.Random01(e.types.V).Float64() * sum
		chosen := -1
		for i := 0; i < 4; i++ {
			if prefix[i] > draw {
				chosen = i
				break
			}
		}
		if chosen == -1 {
			chosen = 3
		}

		d := Deltas[chosen]
		nx, ny = x+d.DX, y+d.DY
		if !eligible[chosen] {
			panic("engine: propagateMove chose an ineligible direction, invariant violated")
		}

		if e.lastUse.At(nx, ny) == e.ut-1 {
			ret = true
		} else {
			ret = e.propagateMove(nx, ny, false)
		}
		if ret {
			break
		}
	}

	e.lastUse.Set(x, y, e.ut)
	row := e.velocity.Ptr(x, y)
	for _, d := range Deltas {
		cnx, cny := x+d.DX, y+d.DY
		if cnx < 0 || cnx >= e.rows || cny < 0 || cny >= e.cols {
			continue
		}
		if e.field.At(cnx, cny) == Wall || e.lastUse.At(cnx, cny) == e.ut {
			continue
		}
		if row.get(d.DX, d.DY).Sign() < 0 {
			e.propagateStop(cnx, cny, false)
		}
	}

	if ret && !isFirst {
		e.swapWith(x, y, nx, ny)
	}
	return ret
}

// propagateStop is spec.md §4.4's propagate_stop: marks (x,y) finalised and
// recurses into non-wall, non-visited neighbours with non-positive outgoing
// velocity, unless force is false and some eligible neighbour still has
// positive outgoing velocity (in which case it does nothing yet).
func (e *Engine) propagateStop(x, y int, force bool) {
	if !force {
		row := e.velocity.Ptr(x, y)
		stop := true
		for _, d := range Deltas {
			nx, ny := x+d.DX, y+d.DY
			if nx < 0 || nx >= e.rows || ny < 0 || ny >= e.cols {
				continue
			}
			if e.field.At(nx, ny) != Wall && e.lastUse.At(nx, ny) < e.ut-1 && row.get(d.DX, d.DY).Sign() > 0 {
				stop = false
				break
			}
		}
		if !stop {
			return
		}
	}

	e.lastUse.Set(x, y, e.ut)
	row := e.velocity.Ptr(x, y)
	for _, d := range Deltas {
		nx, ny := x+d.DX, y+d.DY
		if nx < 0 || nx >= e.rows || ny < 0 || ny >= e.cols {
			continue
		}
		if e.field.At(nx, ny) == Wall || e.lastUse.At(nx, ny) == e.ut || row.get(d.DX, d.DY).Sign() > 0 {
			continue
		}
		e.propagateStop(nx, ny, false)
	}
}

// swapWith exchanges cell kind, pressure, and the whole velocity row between
// two cells — the step that actually carries fluid one cell along the
// chosen chain. A direct two-way swap, per spec.md §9 Open Question (b): the
// source's three-swap-via-scratch-register variant is equivalent but the
// spec directs implementers to prefer the simpler two-way form.
func (e *Engine) swapWith(x1, y1, x2, y2 int) {
	k1, k2 := e.field.At(x1, y1), e.field.At(x2, y2)
	e.field.Set(x1, y1, k2)
	e.field.Set(x2, y2, k1)

	p1, p2 := e.p.At(x1, y1), e.p.At(x2, y2)
	e.p.Set(x1, y1, p2)
	e.p.Set(x2, y2, p1)

	v1, v2 := *e.velocity.Ptr(x1, y1), *e.velocity.Ptr(x2, y2)
	e.velocity.Set(x1, y1, v2)
	e.velocity.Set(x2, y2, v1)
}
