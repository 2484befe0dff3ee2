package engine

import "github.com/pthm-cable/fluidsim/numeric"

// Point is a grid coordinate, used for cycle end-points and the deferred
// cross-border queue.
type Point struct{ X, Y int }

// strip describes the column range [Lo,Hi] (inclusive) a worker's interior
// traversal is confined to, plus the local slice it defers cross-border
// neighbours into. A nil *strip (or one spanning the whole grid) never
// defers anything — the sequential, single-worker case.
type strip struct {
	Lo, Hi   int
	Deferred []Point
}

func (s *strip) inBounds(y int) bool {
	if s == nil {
		return true
	}
	return y >= s.Lo && y <= s.Hi
}

// offset encodes the epoch colour per spec.md §4.4: interior (bounded)
// traversal uses UT-k-2, the edges drain pass uses UT-k. This resolves the
// spec's own "edges mode only" bullet against its offset-family
// description (§4.4/§9): the strip-bounds check fires during the bounded
// interior pass (bounded=true → edges=false), which is the pass that
// actually owns a strip to be bounded by; the serial drain pass runs over
// the whole grid and never defers further.
func (e *Engine) offset(bounded bool, k int64) int64 {
	if bounded {
		return e.ut - k - 2
	}
	return e.ut - k
}

// phaseMakeFlow is tick phase 3 (spec.md §4.4): clear vf, then repeatedly
// sweep the grid with propagateFlow (bounded, per partition) and drain the
// deferred cross-border queue (unbounded) until a sweep makes no progress.
func (e *Engine) phaseMakeFlow() error {
	e.velFlow.Clear()
	zeroVf := e.types.Vf.Zero()
	for i := range e.velFlow.Raw() {
		for d := 0; d < 4; d++ {
			e.velFlow.Raw()[i][d] = zeroVf
		}
	}

	subPasses := 0
	for {
		e.ut += 4
		subPasses++
		var progress bool
		var err error
		if e.part != nil {
			progress, err = e.part.runSubPass()
		} else {
			progress, err = e.runSequentialSubPass()
		}
		if err != nil {
			return err
		}
		if !progress {
			break
		}
	}
	if e.OnSubPass != nil {
		e.OnSubPass(subPasses)
	}
	return nil
}

// runSequentialSubPass is the W<=1 path: one strip spanning the whole grid,
// so the deferred queue never receives anything.
func (e *Engine) runSequentialSubPass() (bool, error) {
	s := &strip{Lo: 0, Hi: e.cols - 1}
	progress := false
	for x := 0; x < e.rows; x++ {
		for y := 0; y < e.cols; y++ {
			if e.field.At(x, y) == Wall {
				continue
			}
			if e.lastUse.At(x, y) >= e.offset(true, 0) {
				continue
			}
			pushed, _, _, err := e.propagateFlow(x, y, e.types.V.FromInt(1), true, s)
			if err != nil {
				return false, err
			}
			if pushed.Sign() > 0 {
				progress = true
			}
		}
	}
	for _, pt := range s.Deferred {
		pushed, _, _, err := e.propagateFlow(pt.X, pt.Y, e.types.V.FromInt(1), false, nil)
		if err != nil {
			return false, err
		}
		if pushed.Sign() > 0 {
			progress = true
		}
	}
	return progress, nil
}

// propagateFlow is the depth-first augmenting-path search from spec.md
// §4.4. bounded selects whether this call is a strip-bounded interior call
// (true) or an unbounded edges-drain call (false); s is the owning strip
// (nil/whole-grid for unbounded calls).
func (e *Engine) propagateFlow(x, y int, lim numeric.Value, bounded bool, s *strip) (numeric.Value, bool, Point, error) {
	e.lastUse.Set(x, y, e.offset(bounded, 1))
	pushed := e.types.V.Zero()

	for _, d := range Deltas {
		nx, ny := x+d.DX, y+d.DY
		if nx < 0 || nx >= e.rows || ny < 0 || ny >= e.cols {
			continue
		}
		if e.field.At(nx, ny) == Wall {
			continue
		}
		if e.lastUse.At(nx, ny) >= e.offset(bounded, 0) {
			continue
		}

		row := e.velocity.Ptr(x, y)
		flowRow := e.velFlow.Ptr(x, y)
		capacity := row.get(d.DX, d.DY)
		flow := flowRow.get(d.DX, d.DY)
		if flow.Equal(capacity) {
			continue
		}

		if bounded && s != nil && !s.inBounds(ny) {
			s.Deferred = append(s.Deferred, Point{nx, ny})
			continue
		}

		vp := numeric.Min(lim, capacity.Sub(flow))

		if e.lastUse.At(nx, ny) == e.offset(bounded, 1) {
			flowRow.add(d.DX, d.DY, vp)
			e.lastUse.Set(x, y, e.offset(bounded, 0))
			return vp, true, Point{nx, ny}, nil
		}

		t, committed, end, err := e.propagateFlow(nx, ny, vp, bounded, s)
		if err != nil {
			return pushed, false, Point{}, err
		}
		pushed = pushed.Add(t)
		if committed {
			flowRow.add(d.DX, d.DY, t)
			e.lastUse.Set(x, y, e.offset(bounded, 0))
			return t, committed && end != (Point{x, y}), end, nil
		}
	}

	e.lastUse.Set(x, y, e.offset(bounded, 0))
	return pushed, false, Point{}, nil
}
