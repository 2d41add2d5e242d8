// Package scoring combines the individual fraud signals into the 0-100 risk
// score, level, color and verdict the product reports.
package scoring

import (
	"math"
	"strings"

	"github.com/verijob/verijob/internal/model"
)

// Risk colors as consumed by the screens.
const (
	ColorDanger  = "danger"
	ColorWarning = "warning"
	ColorSuccess = "success"
)

// Signal weights. Red flags, LLM reasoning, scam-database hits and company
// legitimacy contribute 25/30/20/25 percent respectively.
const (
	weightRedFlags   = 0.25
	weightLLM        = 0.30
	weightScam       = 0.20
	weightLegitimacy = 0.25
)

// highRiskFloor is applied whenever the LLM reasoning names high risk.
const highRiskFloor = 60

// scamThreshold is the score at or above which a posting is called a scam.
const scamThreshold = 60

// Inputs are the per-signal results feeding the combined score. Zero values
// are meaningful: an empty LLMReasoning contributes nothing, and an all-false
// Legitimacy contributes the full legitimacy penalty (an unverifiable
// company is a risk signal).
type Inputs struct {
	RedFlagCount int
	LLMReasoning string
	Scam         model.ScamCheckResult
	Legitimacy   model.CompanyLegitimacy
}

// RiskScore computes the weighted 0-100 score.
func RiskScore(in Inputs) int {
	redFlagScore := math.Min(float64(in.RedFlagCount)*15, 100)

	reasoning := strings.ToLower(in.LLMReasoning)
	llmScore := 0.0
	switch {
	case strings.Contains(reasoning, "high"):
		llmScore = 40
	case strings.Contains(reasoning, "medium"):
		llmScore = 25
	case strings.Contains(reasoning, "low"):
		llmScore = 10
	}

	scamScore := 0.0
	if in.Scam.EmailFlagged {
		scamScore += 50
	}
	if in.Scam.PhoneFlagged {
		scamScore += 50
	}
	scamScore = math.Min(scamScore, 100)

	legitimacyScore := 100.0
	if in.Legitimacy.WebsiteExists {
		legitimacyScore -= 40
	}
	if in.Legitimacy.LinkedInExists {
		legitimacyScore -= 40
	}
	legitimacyScore = math.Max(0, legitimacyScore)

	total := redFlagScore*weightRedFlags +
		llmScore*weightLLM +
		scamScore*weightScam +
		legitimacyScore*weightLegitimacy

	if strings.Contains(reasoning, "high") {
		total = math.Max(highRiskFloor, total)
	}

	return int(math.Round(total))
}

// RiskLevel maps a score to the Low/Medium/High label, aligned with the
// color thresholds.
func RiskLevel(score int) string {
	switch {
	case score >= 70:
		return model.RiskHigh
	case score >= 40:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// RiskColor maps a score to the screen color band.
func RiskColor(score int) string {
	switch {
	case score >= 70:
		return ColorDanger
	case score >= 40:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// Verdict maps a score to the display verdict.
func Verdict(score int) string {
	switch {
	case score >= 70:
		return "Likely Fraudulent"
	case score >= 40:
		return "Suspicious"
	default:
		return "Likely Legitimate"
	}
}

// IsScam reports whether the score crosses the scam threshold.
func IsScam(score int) bool {
	return score >= scamThreshold
}
