// Package analyzer runs the two-tier fraud analysis: a fast rule-based
// quick scan, and a detailed LLM-backed scan that silently falls back to
// the quick path when the model is unavailable.
package analyzer

import (
	"context"
	"strings"
	"time"

	"github.com/verijob/verijob/internal/companycheck"
	"github.com/verijob/verijob/internal/extract"
	"github.com/verijob/verijob/internal/interfaces"
	"github.com/verijob/verijob/internal/llm"
	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/model"
	"github.com/verijob/verijob/internal/rules"
	"github.com/verijob/verijob/internal/scamdb"
	"github.com/verijob/verijob/internal/scoring"
	"github.com/verijob/verijob/internal/scraper"
	"github.com/verijob/verijob/internal/store"
)

const (
	defaultCompanyName = "Unknown Company"
	defaultJobTitle    = "Unknown Position"
	maxFieldLength     = 200
)

// Saver is the slice of store the analyzer needs; nil disables persistence
// (the CLI runs without a database).
type Saver interface {
	SaveAnalysis(ctx context.Context, job *model.JobPosting, rec *model.AnalysisRecord, flags []model.RedFlag, legit model.CompanyLegitimacy) (string, string, error)
}

// Analyzer implements interfaces.Detector.
type Analyzer struct {
	scraper *scraper.Scraper
	scam    *scamdb.DB
	llm     llm.Analyzer
	company *companycheck.Checker
	saver   Saver
	logger  logging.Logger
}

var _ interfaces.Detector = (*Analyzer)(nil)

// Options bundle the analyzer's collaborators. Scraper is required; the
// rest may be nil, individually disabling scam lookups, the detailed path,
// legitimacy checks or persistence.
type Options struct {
	Scraper *scraper.Scraper
	ScamDB  *scamdb.DB
	LLM     llm.Analyzer
	Company *companycheck.Checker
	Saver   Saver
	Logger  interfaces.Logger
}

func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("analyzer")
	}
	return &Analyzer{
		scraper: opts.Scraper,
		scam:    opts.ScamDB,
		llm:     opts.LLM,
		company: opts.Company,
		saver:   opts.Saver,
		logger:  logger.With(logging.Field{Key: "component", Value: "analyzer"}),
	}
}

// errResponse wraps a recoverable failure as a response whose Error field
// overrides normal rendering.
func errResponse(msg string) *model.AnalysisResponse {
	return &model.AnalysisResponse{Error: msg}
}

// Analyze runs the full analysis. Recoverable problems (bad input, scrape
// failure, short text) come back as a response with Error set; the returned
// error is reserved for context cancellation.
func (a *Analyzer) Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResponse, error) {
	if req == nil {
		return errResponse("No data provided"), nil
	}

	jobText := strings.TrimSpace(req.JobText)
	jobURL := strings.TrimSpace(req.JobURL)
	companyName := truncate(strings.TrimSpace(req.CompanyName), maxFieldLength)
	jobTitle := truncate(strings.TrimSpace(req.JobTitle), maxFieldLength)

	analysisType := strings.ToLower(strings.TrimSpace(req.AnalysisType))
	if analysisType == "" {
		analysisType = model.AnalysisQuick
	}
	if analysisType != model.AnalysisQuick && analysisType != model.AnalysisDetailed {
		return errResponse(`analysis_type must be "quick" or "detailed"`), nil
	}

	if jobURL != "" {
		if !scraper.IsValidURL(jobURL) {
			return errResponse("Invalid or unsafe URL format"), nil
		}
		if jobText == "" {
			if a.scraper == nil {
				return errResponse("URL analysis is not available"), nil
			}
			posting, err := a.scraper.Scrape(ctx, jobURL)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				a.logger.Warn("scrape failed",
					logging.Field{Key: "url", Value: jobURL},
					logging.Field{Key: "error", Value: err.Error()})
				return errResponse("Failed to scrape job posting"), nil
			}
			jobText = posting.Text
			if posting.Title != "" && posting.Title != "Unknown" {
				jobTitle = truncate(posting.Title, maxFieldLength)
			}
		}
	} else {
		if jobText == "" {
			return errResponse("Either job_text or job_url must be provided"), nil
		}
		jobURL = store.ManualEntryURL
	}

	if len(jobText) < scraper.MinTextLength {
		return errResponse("Job description too short (minimum 50 characters)"), nil
	}

	if companyName == "" {
		companyName = defaultCompanyName
	}
	if jobTitle == "" {
		jobTitle = defaultJobTitle
	}

	start := time.Now()
	var out *outcome
	switch analysisType {
	case model.AnalysisDetailed:
		out = a.detailedScan(ctx, jobText, companyName)
	default:
		out = a.quickScan(ctx, jobText)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	elapsed := time.Since(start).Seconds()

	isScam := scoring.IsScam(out.score)
	resp := &model.AnalysisResponse{
		RiskScore: out.score,
		RiskLevel: out.level,
		RiskColor: scoring.RiskColor(out.score),
		Verdict:   out.verdict,
		IsScam:    isScam,
		AutoReply: AutoReply(isScam),
		Analysis: &model.AnalysisDetail{
			RedFlags:          model.Messages(out.flags),
			CompanyLegitimacy: out.legitimacy,
			ScamDatabaseCheck: out.scam,
			LLMAnalysis:       out.llmAnalysis,
			CompanyInfo: model.CompanyInfo{
				Name:    companyName,
				Website: out.legitimacy.Website,
			},
		},
		Recommendations: Advice(out, isScam),
		AnalysisType:    analysisType,
		DetectionMethod: out.method,
		Performance: &model.Performance{
			AnalysisTime: roundTwo(elapsed),
			Method:       methodLabel(out.method),
		},
	}

	a.persist(ctx, jobURL, jobTitle, companyName, jobText, out, resp)

	a.logger.Info("analysis complete",
		logging.Field{Key: "type", Value: analysisType},
		logging.Field{Key: "method", Value: out.method},
		logging.Field{Key: "score", Value: out.score})

	return resp, nil
}

// outcome is the internal result either scan path produces.
type outcome struct {
	score       int
	level       string
	verdict     string
	flags       []model.RedFlag
	scam        model.ScamCheckResult
	legitimacy  model.CompanyLegitimacy
	llmAnalysis string
	method      string
}

// quickScan is the rule-based path: red-flag rules, scam-contact lookup and
// near-duplicate matching. No network beyond the scam database.
func (a *Analyzer) quickScan(ctx context.Context, text string) *outcome {
	flags := rules.Check(text)

	var scamRes model.ScamCheckResult
	if a.scam != nil {
		scamRes = a.scam.Check(ctx, extract.Email(text), extract.Phone(text))
		if matched, _ := a.scam.MatchesKnownScam(ctx, text); matched {
			flags = append(flags, model.RedFlag{
				RuleID:   "known_scam_match",
				Severity: rules.SeverityHigh,
				Message:  "Nearly identical to a posting already reported as a scam",
			})
		}
	}

	score := scoring.RiskScore(scoring.Inputs{
		RedFlagCount: len(flags),
		Scam:         scamRes,
	})

	return &outcome{
		score:   score,
		level:   scoring.RiskLevel(score),
		verdict: scoring.Verdict(score),
		flags:   flags,
		scam:    scamRes,
		method:  model.MethodQuick,
	}
}

// detailedScan is the LLM path plus company-legitimacy and scam-database
// signals. Any LLM failure falls back to the quick scan with a flag noting
// the downgrade.
func (a *Analyzer) detailedScan(ctx context.Context, text, companyName string) *outcome {
	if a.llm == nil {
		return a.fallbackScan(ctx, text)
	}

	llmRes, err := a.llm.Analyze(ctx, text)
	if err != nil {
		a.logger.Warn("detailed analysis failed, falling back to quick scan",
			logging.Field{Key: "error", Value: err.Error()})
		return a.fallbackScan(ctx, text)
	}

	flags := make([]model.RedFlag, 0, len(llmRes.RedFlags))
	for _, f := range llmRes.RedFlags {
		flags = append(flags, model.RedFlag{
			RuleID:   "llm_indicator",
			Severity: severityForLevel(llmRes.RiskLevel),
			Message:  f,
		})
	}

	var scamRes model.ScamCheckResult
	if a.scam != nil {
		scamRes = a.scam.Check(ctx, extract.Email(text), extract.Phone(text))
	}

	var legit model.CompanyLegitimacy
	if a.company != nil {
		name := companyName
		if name == defaultCompanyName {
			name = extract.CompanyName(text)
		}
		legit = a.company.Check(ctx, name, extract.Website(text))
	}

	score := scoring.RiskScore(scoring.Inputs{
		RedFlagCount: len(flags),
		LLMReasoning: llmRes.RiskLevel + " " + llmRes.Reasoning,
		Scam:         scamRes,
		Legitimacy:   legit,
	})

	return &outcome{
		score:       score,
		level:       scoring.RiskLevel(score),
		verdict:     scoring.Verdict(score),
		flags:       flags,
		scam:        scamRes,
		legitimacy:  legit,
		llmAnalysis: llmRes.Reasoning,
		method:      model.MethodDetailed,
	}
}

func (a *Analyzer) fallbackScan(ctx context.Context, text string) *outcome {
	out := a.quickScan(ctx, text)
	out.flags = append(out.flags, model.RedFlag{
		RuleID:   "llm_unavailable",
		Severity: rules.SeverityLow,
		Message:  "LLM unavailable - used quick scan",
	})
	out.method = model.MethodQuickFallback
	return out
}

// persist saves the analysis; failure is logged, never surfaced.
func (a *Analyzer) persist(ctx context.Context, url, title, company, text string, out *outcome, resp *model.AnalysisResponse) {
	if a.saver == nil {
		return
	}
	_, _, err := a.saver.SaveAnalysis(ctx,
		&model.JobPosting{URL: url, CompanyName: company, JobTitle: title, Description: text},
		&model.AnalysisRecord{
			RiskScore:       resp.RiskScore,
			RiskLevel:       resp.RiskLevel,
			Verdict:         resp.Verdict,
			DetectionMethod: out.method,
		},
		out.flags, out.legitimacy)
	if err != nil {
		a.logger.Warn("failed to save analysis",
			logging.Field{Key: "error", Value: err.Error()})
	}
}

// Close releases collaborator resources the analyzer owns none of; it
// exists to satisfy interfaces.Detector.
func (a *Analyzer) Close() error { return nil }

func severityForLevel(level string) string {
	switch strings.ToLower(level) {
	case "high":
		return rules.SeverityHigh
	case "low":
		return rules.SeverityLow
	default:
		return rules.SeverityMedium
	}
}

func methodLabel(method string) string {
	if method == model.MethodDetailed {
		return "AI-Powered (Accurate)"
	}
	return "Rule-Based (Fast)"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func roundTwo(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
