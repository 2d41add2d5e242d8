// Package scamdb stores community-reported scam contacts and confirmed scam
// posting texts in SQLite, and answers the lookups the analyzer needs:
// is this email/phone known, and does this text look like a known scam.
package scamdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/model"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNoContact is returned by Add when neither email nor phone is given.
var ErrNoContact = errors.New("scamdb: email or phone required")

// DB is the scam-contact store.
type DB struct {
	db     *sql.DB
	logger logging.Logger
}

// New applies the schema and returns a ready store. db is typically the
// SQLite database at <storage>/scamdb.db; tests pass in-memory handles.
func New(db *sql.DB, logger logging.Logger) (*DB, error) {
	if db == nil {
		return nil, errors.New("scamdb: nil db")
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("scamdb")
	}

	if err := applySchema(db); err != nil {
		return nil, fmt.Errorf("scamdb: %w", err)
	}

	return &DB{
		db:     db,
		logger: logger.With(logging.Field{Key: "component", Value: "scamdb"}),
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

// normalizePhone keeps digits only so formatting differences never hide a hit.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Check looks up email and phone against the database. Empty inputs are
// skipped; a lookup error is logged and treated as no hit, never as a
// failure of the analysis.
func (s *DB) Check(ctx context.Context, email, phone string) model.ScamCheckResult {
	result := model.ScamCheckResult{}

	if email != "" {
		var n int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM scam_contacts WHERE email = ?`,
			strings.ToLower(strings.TrimSpace(email)),
		).Scan(&n)
		if err != nil {
			s.logger.Warn("scam email lookup failed", logging.Field{Key: "error", Value: err.Error()})
		} else if n > 0 {
			result.EmailFlagged = true
			result.FlaggedEmail = email
		}
	}

	if phone != "" {
		clean := normalizePhone(phone)
		if clean != "" {
			var n int
			err := s.db.QueryRowContext(ctx,
				`SELECT COUNT(1) FROM scam_contacts WHERE phone = ?`, clean,
			).Scan(&n)
			if err != nil {
				s.logger.Warn("scam phone lookup failed", logging.Field{Key: "error", Value: err.Error()})
			} else if n > 0 {
				result.PhoneFlagged = true
				result.FlaggedPhone = phone
			}
		}
	}

	return result
}

// Add records a reported scam contact. Contacts already present (by email
// or by normalized phone) are not duplicated; that case is not an error.
func (s *DB) Add(ctx context.Context, email, phone string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	clean := normalizePhone(phone)
	if email == "" && clean == "" {
		return ErrNoContact
	}

	existing := s.Check(ctx, email, phone)
	if existing.EmailFlagged || existing.PhoneFlagged {
		s.logger.Info("scam contact already recorded",
			logging.Field{Key: "email", Value: email},
			logging.Field{Key: "phone", Value: clean})
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scam_contacts (id, email, phone, reported_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), email, clean, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("scamdb: insert contact: %w", err)
	}

	s.logger.Info("recorded scam contact",
		logging.Field{Key: "email", Value: email},
		logging.Field{Key: "phone", Value: clean})
	return nil
}

// AddPosting stores a confirmed scam posting text for similarity matching.
func (s *DB) AddPosting(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("scamdb: empty posting text")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scam_postings (id, text, added_at) VALUES (?, ?, ?)`,
		uuid.New().String(), text, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("scamdb: insert posting: %w", err)
	}
	return nil
}

// knownPostings streams stored scam posting texts, newest first, capped.
func (s *DB) knownPostings(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM scam_postings ORDER BY added_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (s *DB) Close() error {
	return s.db.Close()
}
