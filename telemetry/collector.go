package telemetry

// Collector accumulates per-tick engine events within a window of ticks and
// produces WindowStats when flushed.
type Collector struct {
	windowTicks int64

	windowStartTick int64

	totalSubPasses int
	maxSubPasses   int
	totalMoves     int
	ticksSeen      int
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int64(windowTicks)}
}

// RecordTick records one completed tick's phase-3 sub-pass count and
// whether phase 5 performed a move.
func (c *Collector) RecordTick(subPasses int, moved bool) {
	c.ticksSeen++
	c.totalSubPasses += subPasses
	if subPasses > c.maxSubPasses {
		c.maxSubPasses = subPasses
	}
	if moved {
		c.totalMoves++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window. The
// caller supplies the current tick, a sample of pressure values, and the
// current non-wall cell count (both read directly off the grid).
func (c *Collector) Flush(currentTick int64, pressureSample []float64, nonWallCells int) WindowStats {
	var avgSubPasses float64
	var moveRate float64
	if c.ticksSeen > 0 {
		avgSubPasses = float64(c.totalSubPasses) / float64(c.ticksSeen)
		moveRate = float64(c.totalMoves) / float64(c.ticksSeen)
	}

	mean, p10, p50, p90 := ComputePressureStats(pressureSample)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Ticks:           c.ticksSeen,
		AvgSubPasses:    avgSubPasses,
		MaxSubPasses:    c.maxSubPasses,
		TotalMoves:      c.totalMoves,
		MoveRate:        moveRate,
		PressureMean:    mean,
		PressureP10:     p10,
		PressureP50:     p50,
		PressureP90:     p90,
		NonWallCells:    nonWallCells,
	}

	c.windowStartTick = currentTick
	c.totalSubPasses = 0
	c.maxSubPasses = 0
	c.totalMoves = 0
	c.ticksSeen = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int64 {
	return c.windowTicks
}
