// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters not carried by the
// CLI's type/field-path flags (spec.md §6).
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Engine    EngineConfig    `yaml:"engine"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`
}

// PhysicsConfig holds the tunable physical constants from spec.md §3.
type PhysicsConfig struct {
	Gravity      float64 `yaml:"gravity"`
	DensityGas   float64 `yaml:"density_gas"`
	DensityWater float64 `yaml:"density_water"`
}

// EngineConfig holds engine construction parameters that aren't part of the
// field file itself.
type EngineConfig struct {
	NumWorkers int   `yaml:"num_workers"`
	Seed       int64 `yaml:"seed"`
}

// TelemetryConfig holds defaults for the telemetry package, overridable by
// the CLI's --log-interval/--telemetry-dir flags.
type TelemetryConfig struct {
	LogIntervalTicks int `yaml:"log_interval_ticks"`
	PerfWindowTicks  int `yaml:"perf_window_ticks"`
}

// BookmarksConfig holds thresholds for the flow-convergence anomaly
// detector (telemetry.BookmarkDetector).
type BookmarksConfig struct {
	TurbulentSubPasses int `yaml:"turbulent_sub_passes"`
	HistorySize        int `yaml:"history_size"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// WriteYAML saves the configuration as YAML, for telemetry.OutputManager's
// per-run config snapshot.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
