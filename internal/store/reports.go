package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verijob/verijob/internal/logging"
)

// CreateReport files a community report against a stored posting and bumps
// its trending counters. Returns ErrJobNotFound for unknown jobs and
// ErrDuplicateReport when the user already reported this one.
func (s *Store) CreateReport(ctx context.Context, jobID, userID, reason, experience string) (string, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM job_postings WHERE id = ?`, jobID).Scan(&exists); err != nil {
		return "", fmt.Errorf("create report: job lookup: %w", err)
	}
	if exists == 0 {
		return "", ErrJobNotFound
	}

	var dup int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM community_reports WHERE job_id = ? AND user_id = ?`,
		jobID, userID).Scan(&dup); err != nil {
		return "", fmt.Errorf("create report: duplicate lookup: %w", err)
	}
	if dup > 0 {
		return "", ErrDuplicateReport
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("create report: begin: %w", err)
	}
	defer func() {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			s.logger.Warn("create report: tx rollback failed",
				logging.Field{Key: "error", Value: rerr.Error()})
		}
	}()

	now := time.Now().Unix()
	reportID := uuid.New().String()

	// Reason and experience are length-capped, matching the API contract.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO community_reports (id, job_id, user_id, report_reason, experience, report_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reportID, jobID, userID, truncate(reason, 500), truncate(experience, 1000), now,
	)
	if err != nil {
		return "", fmt.Errorf("create report: insert: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO trending_fraud_jobs (job_id, report_count, view_count, popularity_score, last_updated)
		 VALUES (?, 1, 0, 1.0, ?)
		 ON CONFLICT(job_id) DO UPDATE SET
		   report_count = report_count + 1,
		   last_updated = excluded.last_updated`,
		jobID, now,
	)
	if err != nil {
		return "", fmt.Errorf("create report: trending: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("create report: commit: %w", err)
	}

	s.logger.Info("community report filed",
		logging.Field{Key: "job_id", Value: jobID},
		logging.Field{Key: "user_id", Value: userID})
	return reportID, nil
}

// ReportCount returns how many community reports a posting has.
func (s *Store) ReportCount(ctx context.Context, jobID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM community_reports WHERE job_id = ?`, jobID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("report count: %w", err)
	}
	return n, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
