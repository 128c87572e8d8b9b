package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/runnerr0/timescape/internal/timeline"
)

// Default config file path.
const DefaultConfigPath = "~/.config/timescape/config.yaml"

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all timescape configuration.
type Config struct {
	Timeline TimelineConfig `yaml:"timeline"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Session  SessionConfig  `yaml:"session"`
}

// TimelineConfig holds the surface size and tick layout tunables.
type TimelineConfig struct {
	WidthPx             int     `yaml:"width_px"`
	HeightPx            int     `yaml:"height_px"`
	InitialSpanDays     int     `yaml:"initial_span_days"`
	MinTickGapPx        float64 `yaml:"min_tick_gap_px"`
	EdgeFadeZonePx      float64 `yaml:"edge_fade_zone_px"`
	EdgeRenderPaddingPx float64 `yaml:"edge_render_padding_px"`
}

type StorageConfig struct {
	Path              string `yaml:"path"`
	SQLiteFile        string `yaml:"sqlite_file"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type SessionConfig struct {
	ID string `yaml:"id"`
}

// TickConfig adapts the timeline section for the tick generator.
func (c *Config) TickConfig() timeline.TickConfig {
	return timeline.TickConfig{
		MinTickGapPx:        c.Timeline.MinTickGapPx,
		EdgeFadeZonePx:      c.Timeline.EdgeFadeZonePx,
		EdgeRenderPaddingPx: c.Timeline.EdgeRenderPaddingPx,
	}
}

// DBPath returns the expanded path of the SQLite database.
func (c *Config) DBPath() (string, error) {
	dir, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Timeline.WidthPx <= 0:
		return fmt.Errorf("%w: timeline.width_px must be positive", ErrInvalidConfig)
	case c.Timeline.HeightPx <= 0:
		return fmt.Errorf("%w: timeline.height_px must be positive", ErrInvalidConfig)
	case c.Timeline.InitialSpanDays <= 0:
		return fmt.Errorf("%w: timeline.initial_span_days must be positive", ErrInvalidConfig)
	case c.Timeline.MinTickGapPx <= 0:
		return fmt.Errorf("%w: timeline.min_tick_gap_px must be positive", ErrInvalidConfig)
	case c.Timeline.EdgeFadeZonePx <= 0:
		return fmt.Errorf("%w: timeline.edge_fade_zone_px must be positive", ErrInvalidConfig)
	case c.Timeline.EdgeRenderPaddingPx < 0:
		return fmt.Errorf("%w: timeline.edge_render_padding_px must not be negative", ErrInvalidConfig)
	case c.Storage.SQLiteFile == "":
		return fmt.Errorf("%w: storage.sqlite_file must be set", ErrInvalidConfig)
	case c.Session.ID == "":
		return fmt.Errorf("%w: session.id must be set", ErrInvalidConfig)
	}
	return nil
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := ExpandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
