package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseMakeFlow)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseParticleStep)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}

	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseMakeFlow]; !ok {
		t.Error("expected make_flow phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseParticleStep]; !ok {
		t.Error("expected particle_step phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseGravity)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}

	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.StartTick()
	pc.StartPhase(PhaseGravity)
	time.Sleep(10 * time.Microsecond)
	pc.StartPhase(PhaseParticleStep)
	time.Sleep(10 * time.Microsecond)
	pc.EndTick()

	csv := pc.Stats().ToCSV(100)
	if csv.WindowEnd != 100 {
		t.Errorf("expected window end 100, got %d", csv.WindowEnd)
	}
	if csv.AvgTickUS <= 0 {
		t.Error("expected positive avg tick microseconds in CSV row")
	}
}
