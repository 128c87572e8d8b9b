package storage

import "errors"

// ErrNotFound is returned when a memory or theme id does not exist.
var ErrNotFound = errors.New("not found")

// MemoryQuery filters ListMemories. A window applies only when ToMs > FromMs
// and matches anchors that overlap it.
type MemoryQuery struct {
	SessionID string
	FromMs    int64
	ToMs      int64
	Tag       string
	Limit     int
	Offset    int
}

// ThemeQuery filters ListThemes with the same window rule as MemoryQuery.
type ThemeQuery struct {
	SessionID string
	FromMs    int64
	ToMs      int64
	Limit     int
	Offset    int
}

// Stats holds aggregate statistics about the timescape database.
type Stats struct {
	TotalSessions     int64
	TotalMemories     int64
	TotalThemes       int64
	PointMemories     int64
	RangeMemories     int64
	EarliestMs        int64
	LatestMs          int64
	DatabaseSizeBytes int64
	Sessions          []SessionCount
}

// HasRange reports whether any annotation exists to bound EarliestMs and
// LatestMs.
func (s *Stats) HasRange() bool {
	return s.TotalMemories+s.TotalThemes > 0
}

// SessionCount pairs a session with its annotation counts.
type SessionCount struct {
	SessionID string
	Memories  int64
	Themes    int64
}
