package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/verijob/verijob/internal/model"
)

// JobDetails bundles everything /api/job/{id} serves.
type JobDetails struct {
	Job         model.JobPosting
	Analysis    model.AnalysisRecord
	Indicators  []model.FraudIndicator
	Company     *model.CompanyVerification
	ReportCount int
}

// GetJobDetails loads the posting, its latest analysis, indicators, company
// verification and report count. Returns ErrJobNotFound if the job or its
// analysis is missing.
func (s *Store) GetJobDetails(ctx context.Context, jobID string) (*JobDetails, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT j.id, j.url, j.company_name, j.job_title, j.job_description, j.submitted_at, j.submitted_by,
		        a.id, a.risk_score, a.risk_level, a.verdict, a.detection_method, a.created_at
		 FROM job_postings j
		 JOIN analysis_results a ON a.job_id = j.id
		 WHERE j.id = ?
		 ORDER BY a.created_at DESC
		 LIMIT 1`, jobID)

	var d JobDetails
	var submittedAt, createdAt int64
	err := row.Scan(
		&d.Job.ID, &d.Job.URL, &d.Job.CompanyName, &d.Job.JobTitle, &d.Job.Description, &submittedAt, &d.Job.SubmittedBy,
		&d.Analysis.ID, &d.Analysis.RiskScore, &d.Analysis.RiskLevel, &d.Analysis.Verdict, &d.Analysis.DetectionMethod, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("job details: %w", err)
	}
	d.Job.SubmittedAt = time.Unix(submittedAt, 0)
	d.Analysis.JobID = d.Job.ID
	d.Analysis.CreatedAt = time.Unix(createdAt, 0)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, indicator_type, description, severity_level
		 FROM fraud_indicators WHERE analysis_id = ?`, d.Analysis.ID)
	if err != nil {
		return nil, fmt.Errorf("job details: indicators: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		ind := model.FraudIndicator{AnalysisID: d.Analysis.ID}
		if err := rows.Scan(&ind.ID, &ind.Type, &ind.Description, &ind.Severity); err != nil {
			return nil, fmt.Errorf("job details: indicator scan: %w", err)
		}
		d.Indicators = append(d.Indicators, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if d.Job.CompanyName != "" {
		var cv model.CompanyVerification
		var social, verified int
		err := s.db.QueryRowContext(ctx,
			`SELECT id, company_name, website_url, linkedin_url, social_presence, reputation_score, is_verified
			 FROM company_verifications WHERE company_name = ?`, d.Job.CompanyName).
			Scan(&cv.ID, &cv.CompanyName, &cv.WebsiteURL, &cv.LinkedInURL, &social, &cv.ReputationScore, &verified)
		if err == nil {
			cv.SocialPresence = social != 0
			cv.IsVerified = verified != 0
			d.Company = &cv
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job details: company: %w", err)
		}
	}

	count, err := s.ReportCount(ctx, jobID)
	if err != nil {
		return nil, err
	}
	d.ReportCount = count

	return &d, nil
}

// SafeJob is a low-risk stored posting offered to the recommender.
type SafeJob struct {
	Job       model.JobPosting
	RiskScore int
}

// SafeJobs returns stored postings whose risk score is at or below maxRisk,
// newest first.
func (s *Store) SafeJobs(ctx context.Context, maxRisk, limit int) ([]SafeJob, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT j.id, j.url, j.company_name, j.job_title, j.job_description, j.submitted_at, a.risk_score
		 FROM job_postings j
		 JOIN analysis_results a ON a.job_id = j.id
		 WHERE a.risk_score <= ?
		 ORDER BY j.submitted_at DESC
		 LIMIT ?`, maxRisk, limit)
	if err != nil {
		return nil, fmt.Errorf("safe jobs: %w", err)
	}
	defer rows.Close()

	var out []SafeJob
	for rows.Next() {
		var sj SafeJob
		var submittedAt int64
		if err := rows.Scan(&sj.Job.ID, &sj.Job.URL, &sj.Job.CompanyName, &sj.Job.JobTitle, &sj.Job.Description, &submittedAt, &sj.RiskScore); err != nil {
			return nil, fmt.Errorf("safe jobs: scan: %w", err)
		}
		sj.Job.SubmittedAt = time.Unix(submittedAt, 0)
		out = append(out, sj)
	}
	return out, rows.Err()
}
