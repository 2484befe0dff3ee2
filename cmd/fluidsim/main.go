// Command fluidsim is the CLI driver for the fluid simulation engine: flag
// parsing and type dispatch, the run loop, telemetry output, and
// checkpoint-on-interrupt (spec.md §6).
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/fluidsim/config"
	"github.com/pthm-cable/fluidsim/engine"
	"github.com/pthm-cable/fluidsim/fieldio"
	"github.com/pthm-cable/fluidsim/fluiderr"
	"github.com/pthm-cable/fluidsim/numeric"
	"github.com/pthm-cable/fluidsim/telemetry"
)

var (
	pTypeStr   = flag.String("p-type", "", "pressure numeric type: DOUBLE, FLOAT, FIXED(N,K), FAST_FIXED(N,K)")
	vTypeStr   = flag.String("v-type", "", "velocity numeric type")
	vfTypeStr  = flag.String("v-flow-type", "", "flow-velocity numeric type")
	fieldPath  = flag.String("field-path", "", "path to a field file to start a fresh run from")
	loadPath   = flag.String("load-path", "", "path to a checkpoint to resume from")
	numThreads = flag.Int("num-threads", 0, "number of strip-partition workers for phase 3 (0 = use config default)")
	maxTicks   = flag.Int("max-ticks", 0, "stop after N ticks (0 = run forever)")

	configPath   = flag.String("config", "", "optional YAML config overlay")
	logInterval  = flag.Int("log-interval", 0, "override telemetry window size in ticks (0 = use config default)")
	telemetryDir = flag.String("telemetry-dir", "", "directory for telemetry.csv/perf.csv/bookmarks.csv (empty disables)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		var cfgErr *fluiderr.ConfigError
		var ioErr *fluiderr.IOError
		if errors.As(err, &cfgErr) || errors.As(err, &ioErr) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		// DivisionByZero and InvariantViolation are not recoverable: abort
		// with a diagnostic (spec.md §6).
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(*configPath); err != nil {
		return fluiderr.NewConfigError(fmt.Sprintf("loading config: %v", err))
	}
	cfg := config.Cfg()

	haveField := *fieldPath != ""
	haveLoad := *loadPath != ""
	if haveField == haveLoad {
		return fluiderr.NewConfigError("exactly one of --field-path or --load-path must be supplied")
	}

	numWorkers := cfg.Engine.NumWorkers
	if *numThreads > 0 {
		numWorkers = *numThreads
	}
	engCfg := engine.Config{
		Gravity:    cfg.Physics.Gravity,
		DensityGas: cfg.Physics.DensityGas,
		DensityWat: cfg.Physics.DensityWater,
		NumWorkers: numWorkers,
		Seed:       cfg.Engine.Seed,
	}

	var e *engine.Engine
	if haveField {
		types, err := parseTypes()
		if err != nil {
			return err
		}
		field, err := fieldio.Load(*fieldPath)
		if err != nil {
			return err
		}
		e = engine.New(types, field.Rows, field.Cols, engCfg)
		field.ApplyTo(e)
	} else {
		f, err := os.Open(*loadPath)
		if err != nil {
			return fluiderr.NewIOError("open checkpoint", err)
		}
		defer f.Close()
		e, err = engine.Load(f, engCfg)
		if err != nil {
			return err
		}
	}
	defer e.Close()

	windowTicks := cfg.Telemetry.LogIntervalTicks
	if *logInterval > 0 {
		windowTicks = *logInterval
	}
	collector := telemetry.NewCollector(windowTicks)
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindowTicks)
	bookmarks := telemetry.NewBookmarkDetector(cfg.Bookmarks.HistorySize)

	out, err := telemetry.NewOutputManager(*telemetryDir)
	if err != nil {
		return fluiderr.NewIOError("open telemetry output", err)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return fluiderr.NewIOError("write config snapshot", err)
	}

	var lastSubPasses int
	var lastMoved bool
	e.OnSubPass = func(subPasses int) { lastSubPasses = subPasses }
	e.OnMove = func(moved bool) { lastMoved = moved }
	e.OnPhase = func(phase string) { perf.StartPhase(phase) }

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	slog.Info("starting simulation", "rows", e.Rows(), "cols", e.Cols(), "workers", engCfg.NumWorkers, "resumed_at_tick", e.TickCount())

	start := time.Now()
	for *maxTicks <= 0 || int(e.TickCount()) < *maxTicks {
		select {
		case <-sigCh:
			return checkpointAndExit(e)
		default:
		}

		perf.StartTick()
		if err := e.Tick(); err != nil {
			return err
		}
		perf.EndTick()

		collector.RecordTick(lastSubPasses, lastMoved)

		if collector.ShouldFlush(e.TickCount()) {
			stats := flushWindow(e, collector)
			stats.LogStats()
			perfStats := perf.Stats()
			perfStats.LogStats()

			if err := out.WriteTelemetry(stats); err != nil {
				return fluiderr.NewIOError("write telemetry", err)
			}
			if err := out.WritePerf(perfStats, e.TickCount()); err != nil {
				return fluiderr.NewIOError("write perf", err)
			}

			for _, bm := range bookmarks.Check(stats) {
				bm.LogBookmark()
				if err := out.WriteBookmark(bm); err != nil {
					return fluiderr.NewIOError("write bookmark", err)
				}
			}
		}
	}

	slog.Info("simulation complete", "ticks", e.TickCount(), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// flushWindow samples pressure across every non-wall cell and flushes the
// collector into a WindowStats.
func flushWindow(e *engine.Engine, collector *telemetry.Collector) telemetry.WindowStats {
	var sample []float64
	nonWall := 0
	for x := 0; x < e.Rows(); x++ {
		for y := 0; y < e.Cols(); y++ {
			if e.CellAt(x, y) == engine.Wall {
				continue
			}
			nonWall++
			sample = append(sample, e.PressureAt(x, y))
		}
	}
	return collector.Flush(e.TickCount(), sample, nonWall)
}

func parseTypes() (engine.Types, error) {
	p, err := numeric.ParseType(*pTypeStr)
	if err != nil {
		return engine.Types{}, fluiderr.NewConfigError(fmt.Sprintf("--p-type: %v", err))
	}
	v, err := numeric.ParseType(*vTypeStr)
	if err != nil {
		return engine.Types{}, fluiderr.NewConfigError(fmt.Sprintf("--v-type: %v", err))
	}
	vf, err := numeric.ParseType(*vfTypeStr)
	if err != nil {
		return engine.Types{}, fluiderr.NewConfigError(fmt.Sprintf("--v-flow-type: %v", err))
	}
	return engine.Types{P: p, V: v, Vf: vf}, nil
}

// checkpointAndExit saves to save_<tick> on SIGINT and returns nil so main
// exits with status 0 (spec.md §6: "graceful exit").
func checkpointAndExit(e *engine.Engine) error {
	path := fmt.Sprintf("save_%d", e.TickCount())
	f, err := os.Create(path)
	if err != nil {
		return fluiderr.NewIOError("create checkpoint on interrupt", err)
	}
	defer f.Close()
	if err := e.Save(f); err != nil {
		return err
	}
	slog.Info("checkpoint saved on interrupt", "path", path, "tick", e.TickCount())
	return nil
}
