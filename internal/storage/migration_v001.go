package storage

import "database/sql"

// migrateV001 creates the initial schema: sessions, memories and themes with
// their indexes. Every statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		)`,

		// Point anchors store the instant in both start_ms and end_ms.
		`CREATE TABLE IF NOT EXISTS memories (
			id             TEXT PRIMARY KEY,
			session_id     TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			anchor_kind    TEXT NOT NULL CHECK (anchor_kind IN ('point', 'range')),
			start_ms       INTEGER NOT NULL,
			end_ms         INTEGER NOT NULL,
			title          TEXT NOT NULL DEFAULT '',
			description    TEXT NOT NULL DEFAULT '',
			tags           TEXT NOT NULL DEFAULT '[]',
			vertical_ratio REAL NOT NULL DEFAULT 0.3 CHECK (vertical_ratio BETWEEN 0 AND 1),
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL,
			CHECK (end_ms >= start_ms)
		)`,

		`CREATE TABLE IF NOT EXISTS themes (
			id                TEXT PRIMARY KEY,
			session_id        TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			start_ms          INTEGER NOT NULL,
			end_ms            INTEGER NOT NULL,
			title             TEXT NOT NULL,
			abbreviated_title TEXT NOT NULL DEFAULT '',
			description       TEXT NOT NULL DEFAULT '',
			tags              TEXT NOT NULL DEFAULT '[]',
			color             TEXT NOT NULL DEFAULT '#3b82f6',
			opacity           REAL NOT NULL DEFAULT 0.25,
			priority          INTEGER NOT NULL DEFAULT 100 CHECK (priority BETWEEN 0 AND 1000),
			top_px            REAL NOT NULL,
			bottom_px         REAL NOT NULL,
			created_at        TEXT NOT NULL,
			updated_at        TEXT NOT NULL,
			CHECK (end_ms > start_ms),
			CHECK (bottom_px > top_px)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_memories_session_start ON memories(session_id, start_ms)`,
		`CREATE INDEX IF NOT EXISTS idx_memories_session_end ON memories(session_id, end_ms)`,
		`CREATE INDEX IF NOT EXISTS idx_themes_session_range ON themes(session_id, start_ms, end_ms)`,
		`CREATE INDEX IF NOT EXISTS idx_themes_render_order ON themes(session_id, priority, created_at, id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
