package scoring_test

import (
	"testing"

	"github.com/verijob/verijob/internal/model"
	"github.com/verijob/verijob/internal/scoring"
)

func TestRiskScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   scoring.Inputs
		want int
	}{
		{
			// 0*0.25 + 0*0.30 + 0*0.20 + 100*0.25 = 25: an unverifiable
			// company alone keeps the score in the low band.
			name: "no signals at all",
			in:   scoring.Inputs{},
			want: 25,
		},
		{
			// Red flags cap at 100 (7*15 > 100): 100*0.25 + 100*0.25 = 50.
			name: "red flags cap",
			in:   scoring.Inputs{RedFlagCount: 7},
			want: 50,
		},
		{
			// 45*0.25 + 0 + 0 + 100*0.25 = 36.25 -> 36.
			name: "three red flags",
			in:   scoring.Inputs{RedFlagCount: 3},
			want: 36,
		},
		{
			// Verified company zeroes the legitimacy penalty:
			// 45*0.25 = 11.25 -> 11.
			name: "three flags verified company",
			in: scoring.Inputs{
				RedFlagCount: 3,
				Legitimacy:   model.CompanyLegitimacy{WebsiteExists: true, LinkedInExists: true},
			},
			want: 11,
		},
		{
			// Both contacts flagged: 100*0.20 + 100*0.25 = 45.
			name: "scam contacts flagged",
			in: scoring.Inputs{
				Scam: model.ScamCheckResult{EmailFlagged: true, PhoneFlagged: true},
			},
			want: 45,
		},
		{
			// High in the reasoning floors the total at 60 even when the
			// weighted sum is lower: 40*0.30 + 100*0.25 = 37 -> 60.
			name: "high risk floor",
			in:   scoring.Inputs{LLMReasoning: "high risk posting"},
			want: 60,
		},
		{
			// Medium reasoning has no floor: 25*0.30 + 100*0.25 = 32.5 -> 33.
			name: "medium reasoning",
			in:   scoring.Inputs{LLMReasoning: "medium risk overall"},
			want: 33,
		},
		{
			// Everything bad: 100*0.25 + 40*0.30 + 100*0.20 + 100*0.25 = 82.
			name: "all signals bad",
			in: scoring.Inputs{
				RedFlagCount: 8,
				LLMReasoning: "high risk, multiple scam markers",
				Scam:         model.ScamCheckResult{EmailFlagged: true, PhoneFlagged: true},
			},
			want: 82,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := scoring.RiskScore(tt.in); got != tt.want {
				t.Errorf("RiskScore(%+v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score   int
		level   string
		color   string
		verdict string
		isScam  bool
	}{
		{0, model.RiskLow, scoring.ColorSuccess, "Likely Legitimate", false},
		{39, model.RiskLow, scoring.ColorSuccess, "Likely Legitimate", false},
		{40, model.RiskMedium, scoring.ColorWarning, "Suspicious", false},
		{59, model.RiskMedium, scoring.ColorWarning, "Suspicious", false},
		{60, model.RiskMedium, scoring.ColorWarning, "Suspicious", true},
		{69, model.RiskMedium, scoring.ColorWarning, "Suspicious", true},
		{70, model.RiskHigh, scoring.ColorDanger, "Likely Fraudulent", true},
		{100, model.RiskHigh, scoring.ColorDanger, "Likely Fraudulent", true},
	}

	for _, tt := range tests {
		if got := scoring.RiskLevel(tt.score); got != tt.level {
			t.Errorf("RiskLevel(%d) = %q, want %q", tt.score, got, tt.level)
		}
		if got := scoring.RiskColor(tt.score); got != tt.color {
			t.Errorf("RiskColor(%d) = %q, want %q", tt.score, got, tt.color)
		}
		if got := scoring.Verdict(tt.score); got != tt.verdict {
			t.Errorf("Verdict(%d) = %q, want %q", tt.score, got, tt.verdict)
		}
		if got := scoring.IsScam(tt.score); got != tt.isScam {
			t.Errorf("IsScam(%d) = %v, want %v", tt.score, got, tt.isScam)
		}
	}
}
