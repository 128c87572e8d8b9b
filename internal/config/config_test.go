package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runnerr0/timescape/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1200, cfg.Timeline.WidthPx)
	assert.Equal(t, 480, cfg.Timeline.HeightPx)
	assert.Equal(t, 730, cfg.Timeline.InitialSpanDays)
	assert.Equal(t, 160.0, cfg.Timeline.MinTickGapPx)
	assert.Equal(t, 110.0, cfg.Timeline.EdgeFadeZonePx)
	assert.Equal(t, 40.0, cfg.Timeline.EdgeRenderPaddingPx)
	assert.Equal(t, "~/.config/timescape", cfg.Storage.Path)
	assert.Equal(t, "timescape.db", cfg.Storage.SQLiteFile)
	assert.Equal(t, "wal", cfg.Storage.SQLiteJournalMode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "timeline-main", cfg.Session.ID)
	assert.NoError(t, cfg.Validate())
}

func TestTickConfigAdapter(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, timeline.DefaultTickConfig, cfg.TickConfig())

	cfg.Timeline.MinTickGapPx = 200
	assert.Equal(t, 200.0, cfg.TickConfig().MinTickGapPx)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Timeline.WidthPx = 0 }},
		{"negative height", func(c *Config) { c.Timeline.HeightPx = -1 }},
		{"zero span", func(c *Config) { c.Timeline.InitialSpanDays = 0 }},
		{"zero tick gap", func(c *Config) { c.Timeline.MinTickGapPx = 0 }},
		{"zero fade", func(c *Config) { c.Timeline.EdgeFadeZonePx = 0 }},
		{"negative padding", func(c *Config) { c.Timeline.EdgeRenderPaddingPx = -1 }},
		{"no sqlite file", func(c *Config) { c.Storage.SQLiteFile = "" }},
		{"no session", func(c *Config) { c.Session.ID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestDBPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Path = "/var/lib/timescape"
	path, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/timescape/timescape.db", path)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	cfg.Storage.Path = "~/data"
	path, err = cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "timescape.db"), path)
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
timeline:
  width_px: 800
  min_tick_gap_px: 120
storage:
  sqlite_journal_mode: "delete"
logging:
  level: "debug"
session:
  id: "travel"
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, 800, cfg.Timeline.WidthPx)
	assert.Equal(t, 120.0, cfg.Timeline.MinTickGapPx)
	assert.Equal(t, "delete", cfg.Storage.SQLiteJournalMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "travel", cfg.Session.ID)

	// Non-overridden values remain defaults
	assert.Equal(t, 480, cfg.Timeline.HeightPx)
	assert.Equal(t, 110.0, cfg.Timeline.EdgeFadeZonePx)
	assert.Equal(t, "~/.config/timescape", cfg.Storage.Path)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(cfgPath, []byte(":::not valid yaml{{{"), 0644)
	require.NoError(t, err)

	_, err = Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	assert.Error(t, err)
}

func TestLoadOrCreateCreatesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "deep", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Timeline.WidthPx)

	_, statErr := os.Stat(cfgPath)
	assert.NoError(t, statErr)

	// Written file loads back to the same values.
	cfg2, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, cfg2)
}

func TestLoadOrCreateLoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(cfgPath, []byte("timeline:\n  initial_span_days: 30\n"), 0644)
	require.NoError(t, err)

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Timeline.InitialSpanDays)
	assert.Equal(t, "timescape.db", cfg.Storage.SQLiteFile)
}
