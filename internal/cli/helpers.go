package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/timescape/internal/config"
	"github.com/runnerr0/timescape/internal/storage"
	"github.com/runnerr0/timescape/internal/timeline"
)

// workspace is everything a command needs once config and storage are open.
type workspace struct {
	cfg    *config.Config
	store  *storage.SQLiteStore
	db     *sql.DB
	dbPath string
	logger *log.Logger
	now    func() time.Time
}

func (w *workspace) Close() {
	if w.store != nil {
		w.store.Close()
	}
	if w.db != nil {
		w.db.Close()
	}
}

func (w *workspace) sessionID() string {
	return w.cfg.Session.ID
}

// loadConfig resolves --config (or the default path) and validates it.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if globals == nil || globals.Config == "" {
		cfg, err = config.LoadOrCreate()
	} else {
		path, expandErr := config.ExpandPath(globals.Config)
		if expandErr != nil {
			return nil, expandErr
		}
		cfg, err = config.LoadOrCreateAt(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to stderr so --json output on stdout stays clean.
// --verbose wins over --log-level, which wins over config.
func newLogger(globals *GlobalFlags, cfg *config.Config) (*log.Logger, error) {
	name := cfg.Logging.Level
	if globals != nil && globals.LogLevel != "" {
		name = globals.LogLevel
	}
	level := log.InfoLevel
	if name != "" {
		parsed, err := log.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	if globals != nil && globals.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{Level: level, Prefix: "timescape"}), nil
}

// openWorkspace loads config, opens the database, runs migrations and
// ensures the configured session exists.
func openWorkspace(globals *GlobalFlags) (*workspace, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(globals, cfg)
	if err != nil {
		return nil, err
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	if globals != nil && globals.DB != "" {
		if dbPath, err = config.ExpandPath(globals.DB); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db)
	runner.JournalMode = cfg.Storage.SQLiteJournalMode
	runner.Logger = logger
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create store: %w", err)
	}
	store.SetLogger(logger)

	ws := &workspace{cfg: cfg, store: store, db: db, dbPath: dbPath, logger: logger, now: time.Now}
	if err := store.EnsureSession(context.Background(), ws.sessionID()); err != nil {
		ws.Close()
		return nil, fmt.Errorf("ensure session: %w", err)
	}
	logger.Debug("workspace open", "db", dbPath, "session", ws.sessionID())
	return ws, nil
}

// build resolves the viewport and surface height from flags and config.
func (f ViewportFlags) build(cfg *config.Config, now time.Time) (timeline.Viewport, float64, error) {
	center, err := parseTime(f.Center, now)
	if err != nil {
		return timeline.Viewport{}, 0, fmt.Errorf("--center: %w", err)
	}

	span := int64(cfg.Timeline.InitialSpanDays) * timeline.DayMs
	if f.Span != "" {
		d, err := parseDuration(f.Span)
		if err != nil {
			return timeline.Viewport{}, 0, fmt.Errorf("--span: %w", err)
		}
		span = d.Milliseconds()
	}

	width := cfg.Timeline.WidthPx
	if f.Width > 0 {
		width = f.Width
	}
	height := cfg.Timeline.HeightPx
	if f.Height > 0 {
		height = f.Height
	}
	return timeline.Centered(center, span, width), float64(height), nil
}

// parseTime accepts "now", an offset from now ("-7d", "+2h"), RFC3339, a
// YYYY-MM-DD date (UTC midnight) or epoch milliseconds.
func parseTime(s string, now time.Time) (int64, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "now":
		return now.UnixMilli(), nil
	case len(s) > 1 && (s[0] == '+' || s[0] == '-') && !isDigits(s[1:]):
		d, err := parseDuration(s[1:])
		if err != nil {
			return 0, err
		}
		if s[0] == '-' {
			d = -d
		}
		return now.Add(d).UnixMilli(), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UnixMilli(), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	return 0, fmt.Errorf("invalid time: %q", s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseDuration parses a human-friendly duration string like "30d", "7d", "24h", "2w", "1y".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid duration: empty string")
	}

	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]

	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	switch suffix {
	case 'y':
		return time.Duration(n) * 365 * 24 * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	default:
		return 0, fmt.Errorf("invalid duration: %q (use y, w, d, h, or m suffix)", s)
	}
}

// formatDurationHuman formats a duration into a human-readable string like "30 days".
func formatDurationHuman(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours > 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}

// formatMs renders epoch milliseconds in UTC, minute precision.
func formatMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
}

// rfc3339Ms renders epoch milliseconds for JSON output.
func rfc3339Ms(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// notFound rewrites storage.ErrNotFound into a message naming the record.
func notFound(err error, kind, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s %s not found", kind, id)
	}
	return err
}
