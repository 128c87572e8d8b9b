package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	goflags "github.com/jessevdk/go-flags"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/timescape/internal/config"
	"github.com/runnerr0/timescape/internal/storage"
)

var testNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestWorkspace returns a workspace over a migrated in-memory database
// with default config and a clock pinned to testNow.
func newTestWorkspace(t *testing.T) *workspace {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &workspace{
		cfg:    config.DefaultConfig(),
		store:  store,
		db:     db,
		dbPath: ":memory:",
		logger: log.New(io.Discard),
		now:    func() time.Time { return testNow },
	}
}

// parseCommand parses args with the real parser, so flag defaults apply,
// without executing the matched command.
func parseCommand(t *testing.T, args ...string) *commands {
	t.Helper()
	parser, _, cmds := buildParser("test")
	parser.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := parser.ParseArgs(args)
	require.NoError(t, err)
	return cmds
}

// decodeJSON unmarshals captured --json output into v.
func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v), "output: %s", out)
}
