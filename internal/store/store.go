package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/physiolab/physiopipe/internal/schema"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the SQLite database holding the analytical tables.
type Store struct {
	db       *sql.DB
	registry *schema.Registry
}

// Open creates or opens the store database at the given path. Use
// ":memory:" for an ephemeral store in tests.
//
// The database is configured with:
//   - WAL mode so analysis reads can proceed during a pipeline write
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// Connections are limited to a single writer; the pipeline is batch and
// sequential, so there is never a second writer to wait for.
//
// This function is idempotent - safe to call on an existing database.
func Open(path string, registry *schema.Registry) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply bootstrap schema: %w", err)
	}

	return &Store{db: db, registry: registry}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Registry returns the schema registry the store validates against.
func (s *Store) Registry() *schema.Registry { return s.registry }

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}
