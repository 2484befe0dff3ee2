package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/fluidsim/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkTurbulentWindow BookmarkType = "turbulent_window"
	BookmarkFlowSettled     BookmarkType = "flow_settled"
	BookmarkPressureSpike   BookmarkType = "pressure_spike"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType
	Tick        int64
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the flow: windows where
// phase 3 took unusually many sub-passes to converge (turbulent), windows
// where it has settled to one sub-pass for a while, and pressure spikes
// relative to the rolling mean.
type BookmarkDetector struct {
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	settledWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkTurbulentWindow(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkFlowSettled(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPressureSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkTurbulentWindow(stats WindowStats) *Bookmark {
	cfg := config.Cfg().Bookmarks
	if stats.MaxSubPasses < cfg.TurbulentSubPasses {
		return nil
	}
	bd.settledWindowsCount = 0
	return &Bookmark{
		Type:        BookmarkTurbulentWindow,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("phase 3 needed %d sub-passes (threshold %d)", stats.MaxSubPasses, cfg.TurbulentSubPasses),
	}
}

func (bd *BookmarkDetector) checkFlowSettled(stats WindowStats) *Bookmark {
	cfg := config.Cfg().Bookmarks
	if stats.AvgSubPasses > 1.5 {
		bd.settledWindowsCount = 0
		return nil
	}
	bd.settledWindowsCount++
	if bd.settledWindowsCount == cfg.HistorySize {
		return &Bookmark{
			Type:        BookmarkFlowSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("flow settled to ~1 sub-pass/tick over %d windows", cfg.HistorySize),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPressureSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var sum float64
	for _, h := range history {
		sum += h.PressureMean
	}
	avg := sum / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.PressureMean > avg*2 {
		return &Bookmark{
			Type:        BookmarkPressureSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("mean pressure %.4f is %.1fx rolling average (%.4f)", stats.PressureMean, stats.PressureMean/avg, avg),
		}
	}
	return nil
}
