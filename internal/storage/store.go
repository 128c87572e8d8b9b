package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/runnerr0/timescape/internal/memory"
	"github.com/runnerr0/timescape/internal/theme"
)

// Store defines the persistence operations for timeline annotations.
type Store interface {
	EnsureSession(ctx context.Context, id string) error
	AddMemory(ctx context.Context, m *memory.Memory) error
	GetMemory(ctx context.Context, id string) (*memory.Memory, error)
	ListMemories(ctx context.Context, q MemoryQuery) ([]memory.Memory, error)
	UpdateMemory(ctx context.Context, id string, patch memory.Patch) (*memory.Memory, error)
	DeleteMemory(ctx context.Context, id string) error
	AddTheme(ctx context.Context, t *theme.Theme) error
	GetTheme(ctx context.Context, id string) (*theme.Theme, error)
	ListThemes(ctx context.Context, q ThemeQuery) ([]theme.Theme, error)
	UpdateTheme(ctx context.Context, id string, g theme.Geometry) (*theme.Theme, error)
	DeleteTheme(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// Write retry tunables for SQLITE_BUSY / SQLITE_LOCKED.
const (
	writeAttempts   = 5
	writeDelay      = 20 * time.Millisecond
	writeMaxDelay   = 250 * time.Millisecond
	defaultPageSize = 500
)

const memoryColumns = `id, session_id, anchor_kind, start_ms, end_ms, title, description, tags,
	vertical_ratio, created_at, updated_at`

const themeColumns = `id, session_id, start_ms, end_ms, title, abbreviated_title, description, tags,
	color, opacity, priority, top_px, bottom_px, created_at, updated_at`

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time

	// Prepared statements
	getMemory    *sql.Stmt
	getTheme     *sql.Stmt
	deleteMemory *sql.Stmt
	deleteTheme  *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{
		db:     db,
		logger: log.New(io.Discard),
		now:    time.Now,
	}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

// SetLogger routes store diagnostics to l.
func (s *SQLiteStore) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getMemory, err = s.db.Prepare(`SELECT ` + memoryColumns + ` FROM memories WHERE id = ?`)
	if err != nil {
		return err
	}

	s.getTheme, err = s.db.Prepare(`SELECT ` + themeColumns + ` FROM themes WHERE id = ?`)
	if err != nil {
		return err
	}

	s.deleteMemory, err = s.db.Prepare(`DELETE FROM memories WHERE id = ?`)
	if err != nil {
		return err
	}

	s.deleteTheme, err = s.db.Prepare(`DELETE FROM themes WHERE id = ?`)
	if err != nil {
		return err
	}

	return nil
}

// isBusy reports whether err is a transient lock conflict worth retrying.
func isBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// write runs fn, retrying while SQLite reports the database busy or locked.
func (s *SQLiteStore) write(ctx context.Context, op string, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(writeAttempts),
		retry.Delay(writeDelay),
		retry.MaxDelay(writeMaxDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("retrying write", "op", op, "attempt", n+1, "err", err)
		}),
	)
}

// inTx runs fn in a transaction under the write retry policy.
func (s *SQLiteStore) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	return s.write(ctx, op, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

func ensureSessionTx(ctx context.Context, tx *sql.Tx, id, createdAt string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO sessions (id, created_at) VALUES (?, ?)", id, createdAt,
	)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

// EnsureSession creates the session row if it does not exist.
func (s *SQLiteStore) EnsureSession(ctx context.Context, id string) error {
	if id == "" {
		id = memory.DefaultSessionID
	}
	return s.inTx(ctx, "ensure_session", func(tx *sql.Tx) error {
		return ensureSessionTx(ctx, tx, id, formatTimestamp(s.now()))
	})
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(r rowScanner) (memory.Memory, error) {
	var (
		m                    memory.Memory
		kind, tags           string
		startMs, endMs       int64
		createdAt, updatedAt string
	)
	if err := r.Scan(&m.ID, &m.SessionID, &kind, &startMs, &endMs, &m.Title, &m.Description,
		&tags, &m.VerticalRatio, &createdAt, &updatedAt); err != nil {
		return memory.Memory{}, err
	}

	k, err := memory.ParseAnchorKind(kind)
	if err != nil {
		return memory.Memory{}, err
	}
	if k == memory.PointAnchor {
		m.Anchor = memory.Point(startMs)
	} else {
		m.Anchor = memory.Range(startMs, endMs)
	}
	m.Tags = decodeTags(tags)
	m.CreatedAt, _ = parseTimestamp(createdAt)
	m.UpdatedAt, _ = parseTimestamp(updatedAt)
	return m, nil
}

func anchorBounds(a memory.Anchor) (int64, int64) {
	if a.Kind == memory.PointAnchor {
		return a.AtMs, a.AtMs
	}
	return a.StartMs, a.EndMs
}

// AddMemory inserts m, creating its session on demand. ID, timestamps and a
// missing session id are filled in; the anchor is validated and normalized.
func (s *SQLiteStore) AddMemory(ctx context.Context, m *memory.Memory) error {
	m.Anchor = m.Anchor.Normalize()
	if err := m.Anchor.Validate(); err != nil {
		return err
	}
	m.VerticalRatio = memory.ClampVerticalRatio(m.VerticalRatio)
	if m.SessionID == "" {
		m.SessionID = memory.DefaultSessionID
	}
	tags, err := encodeTags(m.Tags)
	if err != nil {
		return err
	}

	m.ID = uuid.NewString()
	now := s.now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	ts := formatTimestamp(now)
	startMs, endMs := anchorBounds(m.Anchor)

	err = s.inTx(ctx, "add_memory", func(tx *sql.Tx) error {
		if err := ensureSessionTx(ctx, tx, m.SessionID, ts); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO memories (`+memoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.SessionID, m.Anchor.Kind.String(), startMs, endMs, m.Title, m.Description,
			tags, m.VerticalRatio, ts, ts,
		)
		if err != nil {
			return fmt.Errorf("insert memory: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("added memory", "id", m.ID, "session", m.SessionID, "anchor", m.Anchor.Kind)
	return nil
}

// GetMemory retrieves a single memory by ID.
func (s *SQLiteStore) GetMemory(ctx context.Context, id string) (*memory.Memory, error) {
	m, err := scanMemory(s.getMemory.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("memory %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get memory: %w", err)
	}
	return &m, nil
}

// windowClauses appends the session and overlap filters shared by both
// list queries.
func windowClauses(sessionID string, fromMs, toMs int64) ([]string, []any) {
	var clauses []string
	var args []any
	if sessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, sessionID)
	}
	if toMs > fromMs {
		clauses = append(clauses, "start_ms <= ?", "end_ms >= ?")
		args = append(args, toMs, fromMs)
	}
	return clauses, args
}

func pageArgs(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	return limit, max(offset, 0)
}

// ListMemories returns memories ordered by anchor time, then id.
func (s *SQLiteStore) ListMemories(ctx context.Context, q MemoryQuery) ([]memory.Memory, error) {
	clauses, args := windowClauses(q.SessionID, q.FromMs, q.ToMs)
	if q.Tag != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(memories.tags) WHERE json_each.value = ?)")
		args = append(args, q.Tag)
	}

	query := `SELECT ` + memoryColumns + ` FROM memories`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit, offset := pageArgs(q.Limit, q.Offset)
	query += " ORDER BY start_ms, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	memories := []memory.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// UpdateMemory applies patch to the stored memory and returns the result.
func (s *SQLiteStore) UpdateMemory(ctx context.Context, id string, patch memory.Patch) (*memory.Memory, error) {
	var updated memory.Memory
	err := s.inTx(ctx, "update_memory", func(tx *sql.Tx) error {
		current, err := scanMemory(tx.QueryRowContext(ctx,
			`SELECT `+memoryColumns+` FROM memories WHERE id = ?`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("memory %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("load memory: %w", err)
		}

		updated = patch.Apply(current)
		if err := updated.Anchor.Validate(); err != nil {
			return err
		}
		tags, err := encodeTags(updated.Tags)
		if err != nil {
			return err
		}
		updated.UpdatedAt = s.now().UTC()
		startMs, endMs := anchorBounds(updated.Anchor)

		_, err = tx.ExecContext(ctx,
			`UPDATE memories SET anchor_kind = ?, start_ms = ?, end_ms = ?, title = ?, description = ?,
				tags = ?, vertical_ratio = ?, updated_at = ?
			 WHERE id = ?`,
			updated.Anchor.Kind.String(), startMs, endMs, updated.Title, updated.Description,
			tags, updated.VerticalRatio, formatTimestamp(updated.UpdatedAt), id,
		)
		if err != nil {
			return fmt.Errorf("update memory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("updated memory", "id", id)
	return &updated, nil
}

// deleteByID runs a prepared delete and maps zero affected rows to ErrNotFound.
func (s *SQLiteStore) deleteByID(ctx context.Context, stmt *sql.Stmt, kind, id string) error {
	return s.write(ctx, "delete_"+kind, func() error {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return fmt.Errorf("delete %s: %w", kind, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
		}
		return nil
	})
}

// DeleteMemory removes a memory by ID.
func (s *SQLiteStore) DeleteMemory(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.deleteMemory, "memory", id)
}

func scanTheme(r rowScanner) (theme.Theme, error) {
	var (
		t                    theme.Theme
		tags                 string
		createdAt, updatedAt string
	)
	if err := r.Scan(&t.ID, &t.SessionID, &t.StartMs, &t.EndMs, &t.Title, &t.AbbreviatedTitle,
		&t.Description, &tags, &t.Color, &t.Opacity, &t.Priority, &t.TopPx, &t.BottomPx,
		&createdAt, &updatedAt); err != nil {
		return theme.Theme{}, err
	}
	t.Tags = decodeTags(tags)
	t.CreatedAt, _ = parseTimestamp(createdAt)
	t.UpdatedAt, _ = parseTimestamp(updatedAt)
	return t, nil
}

// AddTheme validates and inserts t, creating its session on demand.
func (s *SQLiteStore) AddTheme(ctx context.Context, t *theme.Theme) error {
	if t.SessionID == "" {
		t.SessionID = memory.DefaultSessionID
	}
	if err := t.Validate(); err != nil {
		return err
	}
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}

	t.ID = uuid.NewString()
	now := s.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	ts := formatTimestamp(now)

	err = s.inTx(ctx, "add_theme", func(tx *sql.Tx) error {
		if err := ensureSessionTx(ctx, tx, t.SessionID, ts); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO themes (`+themeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.SessionID, t.StartMs, t.EndMs, t.Title, t.AbbreviatedTitle, t.Description, tags,
			t.Color, t.Opacity, t.Priority, t.TopPx, t.BottomPx, ts, ts,
		)
		if err != nil {
			return fmt.Errorf("insert theme: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("added theme", "id", t.ID, "session", t.SessionID, "priority", t.Priority)
	return nil
}

// GetTheme retrieves a single theme by ID.
func (s *SQLiteStore) GetTheme(ctx context.Context, id string) (*theme.Theme, error) {
	t, err := scanTheme(s.getTheme.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("theme %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get theme: %w", err)
	}
	return &t, nil
}

// ListThemes returns themes in render order.
func (s *SQLiteStore) ListThemes(ctx context.Context, q ThemeQuery) ([]theme.Theme, error) {
	clauses, args := windowClauses(q.SessionID, q.FromMs, q.ToMs)

	query := `SELECT ` + themeColumns + ` FROM themes`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit, offset := pageArgs(q.Limit, q.Offset)
	query += " ORDER BY priority, created_at, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query themes: %w", err)
	}
	defer rows.Close()

	themes := []theme.Theme{}
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		themes = append(themes, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Text timestamps do not sort reliably at sub-second precision.
	return theme.SortForRender(themes), nil
}

// UpdateTheme stores new geometry for a theme and returns the result.
func (s *SQLiteStore) UpdateTheme(ctx context.Context, id string, g theme.Geometry) (*theme.Theme, error) {
	var updated theme.Theme
	err := s.inTx(ctx, "update_theme", func(tx *sql.Tx) error {
		current, err := scanTheme(tx.QueryRowContext(ctx,
			`SELECT `+themeColumns+` FROM themes WHERE id = ?`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("theme %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("load theme: %w", err)
		}

		updated = current.WithGeometry(g)
		if err := updated.Validate(); err != nil {
			return err
		}
		updated.UpdatedAt = s.now().UTC()

		_, err = tx.ExecContext(ctx,
			`UPDATE themes SET start_ms = ?, end_ms = ?, top_px = ?, bottom_px = ?, updated_at = ?
			 WHERE id = ?`,
			g.StartMs, g.EndMs, g.TopPx, g.BottomPx, formatTimestamp(updated.UpdatedAt), id,
		)
		if err != nil {
			return fmt.Errorf("update theme: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("updated theme", "id", id)
	return &updated, nil
}

// DeleteTheme removes a theme by ID.
func (s *SQLiteStore) DeleteTheme(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.deleteTheme, "theme", id)
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(anchor_kind = 'point'), 0),
		       COALESCE(SUM(anchor_kind = 'range'), 0)
		FROM memories`,
	).Scan(&stats.TotalMemories, &stats.PointMemories, &stats.RangeMemories)
	if err != nil {
		return nil, fmt.Errorf("count memories: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM themes").Scan(&stats.TotalThemes)
	if err != nil {
		return nil, fmt.Errorf("count themes: %w", err)
	}

	if stats.HasRange() {
		err = s.db.QueryRowContext(ctx, `
			SELECT MIN(start_ms), MAX(end_ms) FROM (
				SELECT start_ms, end_ms FROM memories
				UNION ALL
				SELECT start_ms, end_ms FROM themes
			)`,
		).Scan(&stats.EarliestMs, &stats.LatestMs)
		if err != nil {
			return nil, fmt.Errorf("annotation time range: %w", err)
		}
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("page size: %w", err)
	}
	stats.DatabaseSizeBytes = pageCount * pageSize

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id,
		       (SELECT COUNT(*) FROM memories m WHERE m.session_id = s.id),
		       (SELECT COUNT(*) FROM themes t WHERE t.session_id = s.id)
		FROM sessions s ORDER BY s.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("session counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc SessionCount
		if err := rows.Scan(&sc.SessionID, &sc.Memories, &sc.Themes); err != nil {
			return nil, err
		}
		stats.Sessions = append(stats.Sessions, sc)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.getMemory, s.getTheme, s.deleteMemory, s.deleteTheme}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
