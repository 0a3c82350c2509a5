package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer backing the File/Symbol/Edge/
// Callsite/Meta model. Exactly one writer should hold an *sql.DB at a time;
// see internal/lock for the cross-process exclusion sentinel.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL journaling, foreign
// keys enforced, and a busy timeout tolerant of a concurrent reader.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection. There is no reconnect
// path; a Store is unusable after Close.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB, for callers that need to run their own
// transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the schema on first connect, or runs forward migrations
// if the stored schema_version is older than schemaVersion. A schema_version
// newer than this build supports is a fatal, non-recoverable error.
func (s *Store) Migrate() error {
	version, err := s.readSchemaVersion()
	if err != nil {
		return fmt.Errorf("migrate: read schema version: %w", err)
	}

	if version == 0 {
		if _, err := s.db.Exec(schemaDDL); err != nil {
			return fmt.Errorf("migrate: create schema: %w", err)
		}
		if _, err := s.db.Exec(ftsDDL); err != nil {
			return fmt.Errorf("migrate: create fts: %w", err)
		}
		now := time.Now().UTC().Format(time.RFC3339)
		if err := s.setMeta("created_at", now); err != nil {
			return fmt.Errorf("migrate: stamp created_at: %w", err)
		}
		return s.setMeta("schema_version", strconv.Itoa(schemaVersion))
	}

	if version > schemaVersion {
		return fmt.Errorf("%w: have %d, support %d", ErrSchemaMismatch, version, schemaVersion)
	}

	if version < schemaVersion {
		if err := s.runMigrations(version); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if err := s.setMeta("migrated_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
			return err
		}
		return s.setMeta("schema_version", strconv.Itoa(schemaVersion))
	}

	return nil
}

// runMigrations applies forward migrations in order from `from` (exclusive)
// to schemaVersion (inclusive). There is only one schema version so far;
// this is where future migration steps are added.
func (s *Store) runMigrations(from int) error {
	switch from {
	case schemaVersion:
		return nil
	default:
		return nil
	}
}

func (s *Store) readSchemaVersion() (int, error) {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='meta'",
	).Scan(&tableCount)
	if err != nil {
		return 0, err
	}
	if tableCount == 0 {
		return 0, nil
	}

	raw, err := s.getMeta("schema_version")
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
