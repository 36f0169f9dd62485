// Package config loads and validates the simulation configuration.
// Validation runs once at startup so a bad cell size or window size
// fails fast instead of corrupting the index at runtime.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root configuration for one simulation instance.
type Config struct {
	Spatial SpatialConfig `yaml:"spatial"`
	Pool    PoolConfig    `yaml:"pool"`
	Perf    PerfConfig    `yaml:"perf"`
	Sim     SimConfig     `yaml:"sim"`
	Diag    DiagConfig    `yaml:"diag"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// SpatialConfig configures the uniform grid index.
type SpatialConfig struct {
	// CellSize is the grid cell edge length in world units. Tune it to
	// roughly the footprint of a typical entity; it must be positive.
	CellSize float64 `yaml:"cell_size"`
}

// PoolConfig configures the particle pool.
type PoolConfig struct {
	// InitialSize objects are pre-built at startup.
	InitialSize int `yaml:"initial_size"`
}

// PerfConfig configures the performance monitor.
type PerfConfig struct {
	// HistorySize bounds the rolling metrics window, in ticks.
	HistorySize int `yaml:"history_size"`
}

// SimConfig configures the demo tick-loop harness.
type SimConfig struct {
	WorldWidth  float64 `yaml:"world_width"`
	WorldHeight float64 `yaml:"world_height"`
	EntityCount int     `yaml:"entity_count"`
	TickRate    int     `yaml:"tick_rate"` // ticks per second
	Seed        uint64  `yaml:"seed"`
}

// DiagConfig configures the diagnostics endpoint.
type DiagConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
	// IntervalMS is how often stats frames are pushed to websocket
	// subscribers, in milliseconds.
	IntervalMS int `yaml:"interval_ms"`
}

// Interval returns the push interval as a duration.
func (d DiagConfig) Interval() time.Duration {
	return time.Duration(d.IntervalMS) * time.Millisecond
}

// Default returns a configuration that passes Validate.
func Default() Config {
	return Config{
		Spatial: SpatialConfig{CellSize: 100},
		Pool:    PoolConfig{InitialSize: 64},
		Perf:    PerfConfig{HistorySize: 60},
		Sim: SimConfig{
			WorldWidth:  1000,
			WorldHeight: 1000,
			EntityCount: 200,
			TickRate:    60,
			Seed:        1,
		},
		Diag: DiagConfig{
			Enabled:    true,
			ListenAddr: "127.0.0.1:8090",
			IntervalMS: 500,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every constraint the core constructors would reject,
// reporting the first violation.
func (c Config) Validate() error {
	if c.Spatial.CellSize <= 0 {
		return fmt.Errorf("config: %w: spatial.cell_size must be positive, got %g", ErrInvalidConfig, c.Spatial.CellSize)
	}
	if c.Pool.InitialSize < 0 {
		return fmt.Errorf("config: %w: pool.initial_size must not be negative, got %d", ErrInvalidConfig, c.Pool.InitialSize)
	}
	if c.Perf.HistorySize <= 0 {
		return fmt.Errorf("config: %w: perf.history_size must be positive, got %d", ErrInvalidConfig, c.Perf.HistorySize)
	}
	if c.Sim.WorldWidth <= 0 || c.Sim.WorldHeight <= 0 {
		return fmt.Errorf("config: %w: sim world bounds must be positive, got %gx%g", ErrInvalidConfig, c.Sim.WorldWidth, c.Sim.WorldHeight)
	}
	if c.Sim.EntityCount < 0 {
		return fmt.Errorf("config: %w: sim.entity_count must not be negative, got %d", ErrInvalidConfig, c.Sim.EntityCount)
	}
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("config: %w: sim.tick_rate must be positive, got %d", ErrInvalidConfig, c.Sim.TickRate)
	}
	if c.Diag.Enabled {
		if c.Diag.ListenAddr == "" {
			return fmt.Errorf("config: %w: diag.listen_addr is required when diag is enabled", ErrInvalidConfig)
		}
		if c.Diag.IntervalMS <= 0 {
			return fmt.Errorf("config: %w: diag.interval_ms must be positive, got %d", ErrInvalidConfig, c.Diag.IntervalMS)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: %w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
