// Package engine implements the per-tick fluid simulation core: grid state,
// the five tick phases, the recursive flow/move propagation algorithms, the
// UT/last_use visitation-epoch scheme, and the parallel strip partitioner
// for phase 3.
package engine

import (
	"fmt"

	"github.com/pthm-cable/fluidsim/fluiderr"
	"github.com/pthm-cable/fluidsim/grid"
	"github.com/pthm-cable/fluidsim/numeric"
)

// Types bundles the three numeric types the engine is parameterized over, as
// configured on the CLI (spec.md §6).
type Types struct {
	P  numeric.Type
	V  numeric.Type
	Vf numeric.Type
}

// Config holds the tunable parameters that are not part of the field file
// itself: gravity, densities, worker count. Defaults match spec.md §3.
type Config struct {
	Gravity    float64
	DensityGas float64
	DensityWat float64
	NumWorkers int
	Seed       int64
}

// DefaultConfig returns the spec's default physical constants.
func DefaultConfig() Config {
	return Config{
		Gravity:    0.01,
		DensityGas: 0.01,
		DensityWat: 1000,
		NumWorkers: 1,
		Seed:       1337,
	}
}

// Engine owns all simulation state for one grid. It is safe to call Tick
// repeatedly; workers (if NumWorkers > 1) are started by New and stay alive
// until Close.
type Engine struct {
	types  Types
	cfg    Config
	rng    *numeric.Source
	rhoGas numeric.Value
	rhoWat numeric.Value
	g      numeric.Value

	rows, cols int
	field      *grid.Grid[CellKind]
	p          *grid.Grid[numeric.Value]
	oldP       *grid.Grid[numeric.Value]
	velocity   *grid.Grid[velRow]
	velFlow    *grid.Grid[velRow]
	lastUse    *grid.Grid[int64]
	dirs       *grid.Grid[int]

	ut   int64
	tick int64

	part *partitioner

	// OnSubPass, if set, is invoked once per tick after phase 3 converges,
	// with the total number of sub-pass sweeps it needed, for telemetry
	// instrumentation (a tick needing many sub-passes signals turbulent flow).
	OnSubPass func(subPasses int)

	// OnMove, if set, is invoked once per tick after phase 5, reporting
	// whether any particle swap was performed.
	OnMove func(moved bool)

	// OnPhase, if set, is invoked immediately before each of the five tick
	// phases with its name ("gravity", "pressure_velocity", "make_flow",
	// "recalc_pressure", "particle_step"), for per-phase timing.
	OnPhase func(phase string)
}

// New constructs an engine over a rows x cols field, all cells initially
// Wall. Callers populate the field (via SetCell and RecomputeDirs) before the
// first Tick.
func New(types Types, rows, cols int, cfg Config) *Engine {
	e := &Engine{
		types:  types,
		cfg:    cfg,
		rng:    numeric.NewSource(cfg.Seed),
		rhoGas: types.P.FromFloat(cfg.DensityGas),
		rhoWat: types.P.FromFloat(cfg.DensityWat),
		g:      types.V.FromFloat(cfg.Gravity),
		rows:   rows,
		cols:   cols,
		field:  grid.New[CellKind](rows, cols),
		p:      grid.New[numeric.Value](rows, cols),
		oldP:   grid.New[numeric.Value](rows, cols),
		velocity: grid.New[velRow](rows, cols),
		velFlow:  grid.New[velRow](rows, cols),
		lastUse:  grid.New[int64](rows, cols),
		dirs:     grid.New[int](rows, cols),
	}
	e.fillZeroValues()
	if cfg.NumWorkers > 1 {
		e.part = newPartitioner(e, cfg.NumWorkers)
	}
	return e
}

// fillZeroValues seeds p/oldP/velocity grids with properly-typed zero
// Values (the Go zero value of numeric.Value is only correct for Double).
func (e *Engine) fillZeroValues() {
	zeroP := e.types.P.Zero()
	for i := range e.p.Raw() {
		e.p.Raw()[i] = zeroP
	}
	for i := range e.oldP.Raw() {
		e.oldP.Raw()[i] = zeroP
	}
	zeroV := e.types.V.Zero()
	zeroVf := e.types.Vf.Zero()
	vRaw := e.velocity.Raw()
	vfRaw := e.velFlow.Raw()
	for i := range vRaw {
		for d := 0; d < 4; d++ {
			vRaw[i][d] = zeroV
			vfRaw[i][d] = zeroVf
		}
	}
}

// rhoOf returns the density of the given cell kind.
func (e *Engine) rhoOf(k CellKind) numeric.Value {
	switch k {
	case Water:
		return e.rhoWat
	default:
		return e.rhoGas
	}
}

// Rows, Cols report the grid dimensions.
func (e *Engine) Rows() int { return e.rows }
func (e *Engine) Cols() int { return e.cols }

// TickCount returns the number of completed ticks.
func (e *Engine) TickCount() int64 { return e.tick }

// RNGDraws returns the number of random01 draws made so far, for the
// checkpoint codec to persist and replay (numeric.Source has no portable
// serialised state, so the draw count plus the original seed reproduces it).
func (e *Engine) RNGDraws() uint64 { return e.rng.Draws() }

// Types returns the engine's configured numeric types.
func (e *Engine) Types() Types { return e.types }

// CellAt returns the cell kind at (x,y).
func (e *Engine) CellAt(x, y int) CellKind { return e.field.At(x, y) }

// SetCell sets the cell kind at (x,y). Must be called before the first Tick
// (or between ticks, for checkpoint restore); dirs is recomputed by
// RecomputeDirs.
func (e *Engine) SetCell(x, y int, k CellKind) { e.field.Set(x, y, k) }

// PressureAt returns p[x,y] as a float64, for output/inspection.
func (e *Engine) PressureAt(x, y int) float64 { return e.p.At(x, y).Float64() }

// RecomputeDirs recomputes dirs[x,y] = count of non-wall 4-neighbours, for
// every non-wall cell. Must be called once after the field is fully loaded,
// per spec.md §3 ("computed once after field load").
func (e *Engine) RecomputeDirs() {
	for x := 0; x < e.rows; x++ {
		for y := 0; y < e.cols; y++ {
			if e.field.At(x, y) == Wall {
				continue
			}
			count := 0
			for _, d := range Deltas {
				if e.neighborNonWall(x, y, d) {
					count++
				}
			}
			e.dirs.Set(x, y, count)
		}
	}
}

func (e *Engine) neighborNonWall(x, y int, d Delta) bool {
	nx, ny := x+d.DX, y+d.DY
	if nx < 0 || nx >= e.rows || ny < 0 || ny >= e.cols {
		return false
	}
	return e.field.At(nx, ny) != Wall
}

// Tick advances the simulation by exactly one tick: the five phases in
// spec.md §4.4's fixed order.
func (e *Engine) Tick() error {
	e.phase("gravity")
	e.phaseGravity()
	e.phase("pressure_velocity")
	e.phasePressureVelocity()
	e.phase("make_flow")
	if err := e.phaseMakeFlow(); err != nil {
		return err
	}
	e.phase("recalc_pressure")
	e.phaseRecalcPressure()
	e.phase("particle_step")
	moved := e.phaseParticleStep()
	if e.OnMove != nil {
		e.OnMove(moved)
	}
	e.tick++
	return nil
}

func (e *Engine) phase(name string) {
	if e.OnPhase != nil {
		e.OnPhase(name)
	}
}

// Close stops any long-lived partition workers. Safe to call on an engine
// that never started workers.
func (e *Engine) Close() {
	if e.part != nil {
		e.part.stop()
	}
}

// invariantViolation is a thin helper so call sites read like the spec's own
// assertion language.
func invariantViolation(msg string) error {
	return fmt.Errorf("%w: %s", fluiderr.ErrInvariantViolation, msg)
}
