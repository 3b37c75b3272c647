package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cespio/omtmzn/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id string) Run {
	return Run{
		ID:                id,
		ScriptPath:        "model.smt2",
		ScriptHash:        ir.ScriptHash("(check-sat)"),
		OutputBase:        "out.mzn",
		TranslatorVersion: ir.TranslatorVersion,
		OutputVersion:     ir.OutputVersion,
	}
}

// createTestArtifact creates an artifact with minimal required fields.
func createTestArtifact(runID string, index int) Artifact {
	return Artifact{
		RunID:       runID,
		CheckPoint:  index,
		Path:        "out_1.mzn",
		ContentHash: ir.ArtifactHash([]byte("solve satisfy;\n")),
		Strategy:    "satisfy",
	}
}

func pragma(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	var value string
	require.NoError(t, db.QueryRow("PRAGMA "+name).Scan(&value))
	return value
}

func userVersion(t *testing.T, db *sql.DB) int {
	t.Helper()
	var v int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&v))
	return v
}

func columns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	return names(t, db, "SELECT name FROM pragma_table_info(?)", table)
}

func indexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	return names(t, db, "SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ?", table)
}

func tables(t *testing.T, db *sql.DB) []string {
	t.Helper()
	return names(t, db, "SELECT name FROM sqlite_master WHERE type = 'table'")
}

func names(t *testing.T, db *sql.DB, query string, args ...any) []string {
	t.Helper()
	rows, err := db.Query(query, args...)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		out = append(out, name)
	}
	require.NoError(t, rows.Err())
	return out
}
