package llm_test

import (
	"testing"

	"github.com/verijob/verijob/internal/llm"
)

func TestParseModelOutput_CleanJSON(t *testing.T) {
	t.Parallel()

	out := llm.ParseModelOutput(`{"risk_score": 85, "risk_level": "High", "verdict": "scam", "red_flags": ["crypto payment"], "reasoning": "high risk markers"}`)
	if out.RiskScore != 85 || out.RiskLevel != "High" || out.Verdict != "scam" {
		t.Errorf("unexpected result: %+v", out)
	}
	if len(out.RedFlags) != 1 || out.RedFlags[0] != "crypto payment" {
		t.Errorf("RedFlags = %v", out.RedFlags)
	}
}

func TestParseModelOutput_SurroundingProse(t *testing.T) {
	t.Parallel()

	raw := "Sure, here is the analysis:\n```json\n{\"risk_score\": 20, \"risk_level\": \"Low\", \"verdict\": \"legitimate\", \"red_flags\": [], \"reasoning\": \"nothing suspicious\"}\n```\nLet me know if you need more."
	out := llm.ParseModelOutput(raw)
	if out.RiskScore != 20 || out.RiskLevel != "Low" {
		t.Errorf("failed to extract fenced JSON: %+v", out)
	}
}

func TestParseModelOutput_FallbackOnGarbage(t *testing.T) {
	t.Parallel()

	tests := []string{
		"I cannot analyze this posting.",
		"{not valid json}",
		"",
	}
	for _, raw := range tests {
		out := llm.ParseModelOutput(raw)
		if out.RiskScore != 50 || out.RiskLevel != "Medium" || out.Verdict != "unknown" {
			t.Errorf("ParseModelOutput(%q) = %+v, want neutral fallback", raw, out)
		}
		if len(out.RedFlags) != 1 || out.RedFlags[0] != "Unclear LLM output" {
			t.Errorf("fallback RedFlags = %v", out.RedFlags)
		}
		if out.Reasoning != raw {
			t.Errorf("fallback Reasoning = %q, want raw output", out.Reasoning)
		}
	}
}

func TestParseModelOutput_DefaultsApplied(t *testing.T) {
	t.Parallel()

	out := llm.ParseModelOutput(`{"risk_score": 300}`)
	if out.RiskScore != 50 {
		t.Errorf("out-of-range score = %d, want clamped default 50", out.RiskScore)
	}
	if out.RiskLevel != "Medium" || out.Verdict != "unknown" {
		t.Errorf("defaults not applied: %+v", out)
	}
	if out.RedFlags == nil {
		t.Error("RedFlags should default to empty, not nil")
	}
	if out.Reasoning != "No reasoning provided" {
		t.Errorf("Reasoning = %q", out.Reasoning)
	}
}
