package telemetry

import (
	"testing"

	"github.com/pthm-cable/fluidsim/config"
)

func init() {
	config.MustInit("")
}

func TestBookmarkDetector_TurbulentWindow(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 100), MaxSubPasses: 2, AvgSubPasses: 1.2})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 400, MaxSubPasses: 12, AvgSubPasses: 5})

	found := false
	for _, bm := range bookmarks {
		if bm.Type == BookmarkTurbulentWindow {
			found = true
		}
	}
	if !found {
		t.Error("expected turbulent_window bookmark")
	}
}

func TestBookmarkDetector_FlowSettled(t *testing.T) {
	bd := NewBookmarkDetector(10)
	cfg := config.Cfg().Bookmarks

	var last []Bookmark
	for i := 0; i < cfg.HistorySize+1; i++ {
		last = bd.Check(WindowStats{WindowEndTick: int64(i * 100), MaxSubPasses: 1, AvgSubPasses: 1.0})
	}

	found := false
	for _, bm := range last {
		if bm.Type == BookmarkFlowSettled {
			found = true
		}
	}
	if !found {
		t.Error("expected flow_settled bookmark after sustained single-sub-pass windows")
	}
}

func TestBookmarkDetector_PressureSpike(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 4; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 100), PressureMean: 1.0})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, PressureMean: 10.0})

	found := false
	for _, bm := range bookmarks {
		if bm.Type == BookmarkPressureSpike {
			found = true
		}
	}
	if !found {
		t.Error("expected pressure_spike bookmark")
	}
}
