package telemetry

import (
	"log/slog"
	"math"
	"sort"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int64 `csv:"window_start"`
	WindowEndTick   int64 `csv:"window_end"`

	Ticks int `csv:"ticks"`

	// Phase-3 convergence: how many sub-pass sweeps each tick needed.
	AvgSubPasses float64 `csv:"avg_sub_passes"`
	MaxSubPasses int     `csv:"max_sub_passes"`

	// Phase-5 particle moves performed.
	TotalMoves int     `csv:"total_moves"`
	MoveRate   float64 `csv:"move_rate"`

	// Pressure distribution, sampled at window end.
	PressureMean float64 `csv:"pressure_mean"`
	PressureP10  float64 `csv:"pressure_p10"`
	PressureP50  float64 `csv:"pressure_p50"`
	PressureP90  float64 `csv:"pressure_p90"`

	// NonWallCells is invariant across ticks (spec.md §8): the total count
	// of non-wall cells never changes, only which are water vs gas.
	NonWallCells int `csv:"non_wall_cells"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputePressureStats calculates mean and percentiles from sampled pressure
// values.
func ComputePressureStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64, mean float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	var sqDiffSum float64
	for _, v := range values {
		d := v - mean
		sqDiffSum += d * d
	}
	return math.Sqrt(sqDiffSum / float64(n))
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("ticks", s.Ticks),
		slog.Float64("avg_sub_passes", s.AvgSubPasses),
		slog.Int("max_sub_passes", s.MaxSubPasses),
		slog.Int("total_moves", s.TotalMoves),
		slog.Float64("move_rate", s.MoveRate),
		slog.Float64("pressure_mean", s.PressureMean),
		slog.Float64("pressure_p10", s.PressureP10),
		slog.Float64("pressure_p50", s.PressureP50),
		slog.Float64("pressure_p90", s.PressureP90),
		slog.Int("non_wall_cells", s.NonWallCells),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"ticks", s.Ticks,
		"avg_sub_passes", s.AvgSubPasses,
		"max_sub_passes", s.MaxSubPasses,
		"total_moves", s.TotalMoves,
		"move_rate", s.MoveRate,
		"pressure_mean", s.PressureMean,
		"pressure_p50", s.PressureP50,
		"non_wall_cells", s.NonWallCells,
	)
}
