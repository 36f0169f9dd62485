package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	mutate := func(fn func(*Config)) Config {
		cfg := Default()
		fn(&cfg)
		return cfg
	}

	cases := []struct {
		name string
		cfg  Config
	}{
		{"Zero Cell Size", mutate(func(c *Config) { c.Spatial.CellSize = 0 })},
		{"Negative Cell Size", mutate(func(c *Config) { c.Spatial.CellSize = -5 })},
		{"Negative Pool Size", mutate(func(c *Config) { c.Pool.InitialSize = -1 })},
		{"Zero History Size", mutate(func(c *Config) { c.Perf.HistorySize = 0 })},
		{"Zero World Width", mutate(func(c *Config) { c.Sim.WorldWidth = 0 })},
		{"Negative Entity Count", mutate(func(c *Config) { c.Sim.EntityCount = -1 })},
		{"Zero Tick Rate", mutate(func(c *Config) { c.Sim.TickRate = 0 })},
		{"Missing Diag Addr", mutate(func(c *Config) { c.Diag.ListenAddr = "" })},
		{"Zero Diag Interval", mutate(func(c *Config) { c.Diag.IntervalMS = 0 })},
		{"Unknown Log Level", mutate(func(c *Config) { c.LogLevel = "verbose" })},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.cfg.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("Diag Disabled Skips Diag Checks", func(t *testing.T) {
		cfg := Default()
		cfg.Diag.Enabled = false
		cfg.Diag.ListenAddr = ""
		cfg.Diag.IntervalMS = 0
		require.NoError(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	t.Run("Overrides Defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "simcore.yaml")
		data := []byte(`
spatial:
  cell_size: 25
perf:
  history_size: 120
sim:
  entity_count: 500
diag:
  enabled: true
  listen_addr: "127.0.0.1:9999"
  interval_ms: 250
log_level: debug
`)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 25.0, cfg.Spatial.CellSize)
		require.Equal(t, 120, cfg.Perf.HistorySize)
		require.Equal(t, 500, cfg.Sim.EntityCount)
		require.Equal(t, "127.0.0.1:9999", cfg.Diag.ListenAddr)
		require.Equal(t, 250*time.Millisecond, cfg.Diag.Interval())
		require.Equal(t, "debug", cfg.LogLevel)

		// Untouched sections keep their defaults.
		require.Equal(t, Default().Sim.TickRate, cfg.Sim.TickRate)
		require.Equal(t, Default().Pool.InitialSize, cfg.Pool.InitialSize)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("Invalid Values Fail Fast", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("spatial:\n  cell_size: -1\n"), 0o644))

		_, err := Load(path)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}
