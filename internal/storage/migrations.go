package storage

import (
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// migration is one numbered schema step.
type migration struct {
	Version int
	Name    string
	Apply   func(tx *sql.Tx) error
}

// registered lists every schema step in ascending version order.
var registered = []migration{
	{Version: 1, Name: "initial_schema", Apply: migrateV001},
}

var journalModes = map[string]bool{
	"wal": true, "delete": true, "truncate": true, "persist": true, "memory": true, "off": true,
}

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

// MigrationRunner brings a SQLite database up to the latest schema.
type MigrationRunner struct {
	db         *sql.DB
	migrations []migration

	// JournalMode is applied before migrating. Defaults to "wal".
	JournalMode string
	Logger      *log.Logger
}

// NewMigrationRunner returns a runner for every registered migration.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db:          db,
		migrations:  registered,
		JournalMode: "wal",
		Logger:      log.New(io.Discard),
	}
}

// Run configures the connection and applies pending migrations in order.
func (r *MigrationRunner) Run() error {
	if err := r.configure(); err != nil {
		return err
	}

	pending, err := r.pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		r.Logger.Debug("schema up to date", "version", r.latest())
		return nil
	}

	for _, m := range pending {
		if err := r.apply(m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		r.Logger.Info("applied migration", "version", m.Version, "name", m.Name)
	}
	return nil
}

// pending returns the migrations not yet recorded in schema_migrations.
func (r *MigrationRunner) pending() ([]migration, error) {
	if _, err := r.db.Exec(createMigrationsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}

	applied, err := r.appliedVersions()
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}

	var pending []migration
	for _, m := range r.migrations {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Version returns the highest applied migration version, 0 when none.
func (r *MigrationRunner) Version() (int, error) {
	var v sql.NullInt64
	if err := r.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

func (r *MigrationRunner) configure() error {
	mode := strings.ToLower(r.JournalMode)
	if mode == "" {
		mode = "wal"
	}
	if !journalModes[mode] {
		return fmt.Errorf("unsupported journal mode %q", r.JournalMode)
	}

	pragmas := []struct{ stmt, what string }{
		{"PRAGMA journal_mode = " + mode, "set journal mode"},
		{"PRAGMA foreign_keys = ON", "enable foreign keys"},
	}
	for _, p := range pragmas {
		if _, err := r.db.Exec(p.stmt); err != nil {
			return fmt.Errorf("%s: %w", p.what, err)
		}
	}
	return nil
}

func (r *MigrationRunner) appliedVersions() (map[int]bool, error) {
	rows, err := r.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (r *MigrationRunner) latest() int {
	if len(r.migrations) == 0 {
		return 0
	}
	return r.migrations[len(r.migrations)-1].Version
}

// apply runs one migration and records it in the same transaction.
func (r *MigrationRunner) apply(m migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Apply(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
