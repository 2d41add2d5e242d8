package interfaces

import (
	"context"

	"github.com/verijob/verijob/internal/model"
)

// Detector is the contract for submitting a job posting for fraud analysis.
// Implementations may run rule-based checks only or combine them with an
// external LLM; either way they produce a complete AnalysisResponse.
//
// The rest of the codebase (HTTP server, web screens, CLI, orchestrator)
// depends on this abstraction rather than on a concrete analyzer.
type Detector interface {
	// Analyze runs a full analysis of the request. A returned error means the
	// analysis could not run at all; recoverable problems (scrape failures,
	// short text, bad analysis type) come back as a response with a non-empty
	// Error field instead.
	Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResponse, error)

	// Close releases any resources held by the detector.
	Close() error
}
