package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/timescape/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string              `json:"version"`
	DatabasePath      string              `json:"database_path"`
	DatabaseSizeBytes int64               `json:"database_size_bytes"`
	SchemaVersion     int                 `json:"schema_version"`
	Session           string              `json:"session"`
	TotalSessions     int64               `json:"total_sessions"`
	TotalMemories     int64               `json:"total_memories"`
	PointMemories     int64               `json:"point_memories"`
	RangeMemories     int64               `json:"range_memories"`
	TotalThemes       int64               `json:"total_themes"`
	Earliest          string              `json:"earliest,omitempty"`
	Latest            string              `json:"latest,omitempty"`
	Sessions          []sessionCountJSON  `json:"sessions"`
	Timeline          timelineSummaryJSON `json:"timeline"`
}

type sessionCountJSON struct {
	Session  string `json:"session"`
	Memories int64  `json:"memories"`
	Themes   int64  `json:"themes"`
}

type timelineSummaryJSON struct {
	WidthPx         int `json:"width_px"`
	HeightPx        int `json:"height_px"`
	InitialSpanDays int `json:"initial_span_days"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	ws, err := openWorkspace(c.globals)
	if err != nil {
		return err
	}
	defer ws.Close()

	return c.executeWith(ws)
}

// executeWith runs status against an open workspace (for testing).
func (c *StatusCommand) executeWith(ws *workspace) error {
	ctx := context.Background()

	stats, err := ws.store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	schema, err := storage.NewMigrationRunner(ws.db).Version()
	if err != nil {
		return fmt.Errorf("schema version: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(ws, stats, schema)
	}
	return c.printStatusHuman(ws, stats, schema)
}

func (c *StatusCommand) printStatusHuman(ws *workspace, stats *storage.Stats, schema int) error {
	fmt.Println("Timescape Status")
	fmt.Println("================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", ws.dbPath, formatBytes(stats.DatabaseSizeBytes))
	fmt.Printf("Schema:        v%d\n", schema)
	fmt.Printf("Session:       %s\n", ws.sessionID())
	fmt.Printf("Memories:      %s (%s point, %s range)\n",
		formatNumber(stats.TotalMemories), formatNumber(stats.PointMemories), formatNumber(stats.RangeMemories))
	fmt.Printf("Themes:        %s\n", formatNumber(stats.TotalThemes))

	if stats.HasRange() {
		fmt.Printf("Earliest:      %s\n", formatMs(stats.EarliestMs))
		fmt.Printf("Latest:        %s\n", formatMs(stats.LatestMs))
	}

	tl := ws.cfg.Timeline
	fmt.Printf("Surface:       %dx%d px, %d day initial span\n", tl.WidthPx, tl.HeightPx, tl.InitialSpanDays)

	if len(stats.Sessions) > 0 {
		fmt.Println()
		fmt.Println("Sessions:")
		for _, s := range stats.Sessions {
			fmt.Printf("  %-20s %s memories, %s themes\n", s.SessionID, formatNumber(s.Memories), formatNumber(s.Themes))
		}
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(ws *workspace, stats *storage.Stats, schema int) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      ws.dbPath,
		DatabaseSizeBytes: stats.DatabaseSizeBytes,
		SchemaVersion:     schema,
		Session:           ws.sessionID(),
		TotalSessions:     stats.TotalSessions,
		TotalMemories:     stats.TotalMemories,
		PointMemories:     stats.PointMemories,
		RangeMemories:     stats.RangeMemories,
		TotalThemes:       stats.TotalThemes,
		Sessions:          make([]sessionCountJSON, len(stats.Sessions)),
		Timeline: timelineSummaryJSON{
			WidthPx:         ws.cfg.Timeline.WidthPx,
			HeightPx:        ws.cfg.Timeline.HeightPx,
			InitialSpanDays: ws.cfg.Timeline.InitialSpanDays,
		},
	}

	if stats.HasRange() {
		out.Earliest = rfc3339Ms(stats.EarliestMs)
		out.Latest = rfc3339Ms(stats.LatestMs)
	}

	for i, s := range stats.Sessions {
		out.Sessions[i] = sessionCountJSON{Session: s.SessionID, Memories: s.Memories, Themes: s.Themes}
	}

	return writeJSON(out)
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
		if len(s) > remainder {
			result.WriteString(",")
		}
	}
	for i := remainder; i < len(s); i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
