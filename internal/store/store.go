package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ApplicationID marks a SQLite file as an omtmzn ledger ("OMTZ").
const ApplicationID = 0x4f4d545a

// ErrNotLedger is returned by Open for SQLite files owned by another
// application.
var ErrNotLedger = errors.New("not an omtmzn ledger")

// migration upgrades the ledger to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order on top of schema.sql. user_version records the last
// one applied.
var migrations = []migration{
	{
		version: 1,
		name:    "index artifacts by content hash",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_artifacts_content_hash ON artifacts(content_hash)`,
	},
}

// SchemaVersion is the user_version of an up-to-date ledger.
func SchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Store is the artifact ledger.
type Store struct {
	db *sql.DB
}

// Open opens the ledger at path, creating it if needed. ":memory:" opens a
// private in-memory ledger that lives until Close.
//
// Opening a SQLite file that already belongs to another application fails
// with ErrNotLedger and leaves the file untouched.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// One connection: SQLite has a single writer, and an in-memory database
	// exists only on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := setup(db, inMemory(path)); err != nil {
		db.Close()
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func setup(db *sql.DB, memory bool) error {
	if err := claim(db); err != nil {
		return err
	}
	for _, p := range pragmas(memory) {
		if _, err := db.Exec("PRAGMA " + p); err != nil {
			return fmt.Errorf("pragma %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return migrate(db)
}

// pragmas configures a ledger connection. WAL needs a file.
func pragmas(memory bool) []string {
	ps := []string{
		"synchronous = NORMAL",
		"busy_timeout = 5000",
		"foreign_keys = ON",
	}
	if !memory {
		ps = append([]string{"journal_mode = WAL"}, ps...)
	}
	return ps
}

// claim stamps ApplicationID on a fresh database and rejects databases
// stamped by, or already populated by, someone else.
func claim(db *sql.DB) error {
	var id int
	if err := db.QueryRow("PRAGMA application_id").Scan(&id); err != nil {
		return fmt.Errorf("read application_id: %w", err)
	}
	switch id {
	case ApplicationID:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: application_id %#x", ErrNotLedger, id)
	}

	// Unstamped: accept empty files and ledgers holding only our tables.
	var foreign int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name NOT IN ('runs', 'artifacts', 'sqlite_sequence')
	`).Scan(&foreign)
	if err != nil {
		return fmt.Errorf("inspect tables: %w", err)
	}
	if foreign > 0 {
		return fmt.Errorf("%w: found %d unrelated table(s)", ErrNotLedger, foreign)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA application_id = %d", ApplicationID)); err != nil {
		return fmt.Errorf("set application_id: %w", err)
	}
	return nil
}

// migrate applies pending migrations, each in its own transaction together
// with its user_version bump.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version > SchemaVersion() {
		return fmt.Errorf("ledger version %d is newer than supported version %d", version, SchemaVersion())
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: set user_version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return nil
}

func inMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory") || strings.HasPrefix(path, "file::memory:")
}

// Close closes the ledger. Safe to call more than once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
