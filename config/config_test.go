package config

import (
	"os"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Physics.Gravity != 0.01 {
		t.Errorf("Physics.Gravity = %v, want 0.01", cfg.Physics.Gravity)
	}
	if cfg.Engine.Seed != 1337 {
		t.Errorf("Engine.Seed = %v, want 1337", cfg.Engine.Seed)
	}
}

func TestLoadOverlayOverridesOnlyGivenFields(t *testing.T) {
	path := t.TempDir() + "/overlay.yaml"
	if err := os.WriteFile(path, []byte("engine:\n  num_workers: 4\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(overlay) error: %v", err)
	}
	if cfg.Engine.NumWorkers != 4 {
		t.Errorf("Engine.NumWorkers = %v, want 4", cfg.Engine.NumWorkers)
	}
	if cfg.Physics.DensityWater != 1000 {
		t.Errorf("Physics.DensityWater = %v, want 1000 (untouched default)", cfg.Physics.DensityWater)
	}
}

func TestLoadMissingPathErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path.yaml"); err == nil {
		t.Fatal("expected error for missing config path")
	}
}

