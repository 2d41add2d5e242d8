// Package store persists users, job postings, analysis results and
// community reports in SQLite, and answers the aggregate queries behind the
// alerts, stats, job-details and recommendation endpoints.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/verijob/verijob/internal/logging"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

var (
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrJobNotFound     = errors.New("job not found")
	ErrDuplicateReport = errors.New("job already reported by this user")
)

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// New applies the schema and returns a ready Store. db is typically the
// SQLite database at <storage>/verijob.db; tests pass in-memory handles.
func New(db *sql.DB, logger logging.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("store: nil db")
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("store")
	}

	if err := applySchema(db); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With(logging.Field{Key: "component", Value: "store"}),
	}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
