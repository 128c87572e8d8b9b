package config

import (
	"github.com/runnerr0/timescape/internal/memory"
	"github.com/runnerr0/timescape/internal/timeline"
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	ticks := timeline.DefaultTickConfig
	return &Config{
		Timeline: TimelineConfig{
			WidthPx:             1200,
			HeightPx:            480,
			InitialSpanDays:     730,
			MinTickGapPx:        ticks.MinTickGapPx,
			EdgeFadeZonePx:      ticks.EdgeFadeZonePx,
			EdgeRenderPaddingPx: ticks.EdgeRenderPaddingPx,
		},
		Storage: StorageConfig{
			Path:              "~/.config/timescape",
			SQLiteFile:        "timescape.db",
			SQLiteJournalMode: "wal",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Session: SessionConfig{
			ID: memory.DefaultSessionID,
		},
	}
}
