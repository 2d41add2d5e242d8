// Package llm runs the detailed fraud analysis through an OpenRouter chat
// model. The model is instructed to answer in strict JSON; the response is
// parsed tolerantly because models love to wrap JSON in prose anyway.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/eduardolat/openroutergo"

	"github.com/verijob/verijob/internal/interfaces"
	"github.com/verijob/verijob/internal/logging"
)

const systemPrompt = "You are an AI assistant that detects fraudulent job postings. Always respond in valid JSON."

const promptTemplate = `Analyze the following job posting for potential fraud indicators.
Consider:
- Unrealistic salary or perks
- Urgency or pressure tactics
- Poor grammar or vague job roles
- Requests for payment or personal info
- Suspicious or missing company details

Return your response STRICTLY in the following JSON format:

{
  "risk_score": <integer between 0 and 100>,
  "risk_level": "<Low|Medium|High>",
  "verdict": "<legitimate|fraudulent>",
  "red_flags": [<list of short risk indicators>],
  "reasoning": "<one-sentence summary>"
}

Job Posting:
%s`

// ErrNotConfigured means no API key is set; callers fall back to the quick scan.
var ErrNotConfigured = errors.New("llm: no API key configured")

// Result is the structured detailed-analysis output.
type Result struct {
	RiskScore int      `json:"risk_score"`
	RiskLevel string   `json:"risk_level"`
	Verdict   string   `json:"verdict"`
	RedFlags  []string `json:"red_flags"`
	Reasoning string   `json:"reasoning"`
}

// Analyzer is the detailed-analysis contract; OpenRouterAnalyzer is the real
// implementation, tests swap in fakes.
type Analyzer interface {
	Analyze(ctx context.Context, jobText string) (*Result, error)
}

// OpenRouterAnalyzer talks to OpenRouter.
type OpenRouterAnalyzer struct {
	apiKey string
	model  string
	logger logging.Logger
}

func NewOpenRouterAnalyzer(apiKey, model string, logger interfaces.Logger) *OpenRouterAnalyzer {
	if logger == nil {
		logger = logging.NewStdoutLogger("llm")
	}
	return &OpenRouterAnalyzer{
		apiKey: apiKey,
		model:  model,
		logger: logger.With(logging.Field{Key: "component", Value: "llm"}),
	}
}

// Analyze sends the posting to the model and parses the JSON verdict.
// A malformed model response is not an error: it degrades to a neutral
// medium-risk result carrying the raw output as reasoning.
func (a *OpenRouterAnalyzer) Analyze(ctx context.Context, jobText string) (*Result, error) {
	if a.apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := openroutergo.
		NewClient().
		WithAPIKey(a.apiKey).
		Create()
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}

	_, resp, err := client.
		NewChatCompletion().
		WithModel(a.model).
		WithSystemMessage(systemPrompt).
		WithUserMessage(fmt.Sprintf(promptTemplate, jobText)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("llm: execute completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: no response choices received")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	result := ParseModelOutput(output)

	a.logger.Info("detailed analysis completed",
		logging.Field{Key: "risk_score", Value: result.RiskScore},
		logging.Field{Key: "verdict", Value: result.Verdict})

	return result, nil
}

// ParseModelOutput extracts the JSON object from model output, tolerating
// surrounding prose and code fences. Unparseable output yields the neutral
// fallback result.
func ParseModelOutput(output string) *Result {
	result := &Result{}

	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(output[start:end+1]), result); err == nil {
			applyDefaults(result)
			return result
		}
	}

	return &Result{
		RiskScore: 50,
		RiskLevel: "Medium",
		Verdict:   "unknown",
		RedFlags:  []string{"Unclear LLM output"},
		Reasoning: output,
	}
}

func applyDefaults(r *Result) {
	if r.RiskScore < 0 || r.RiskScore > 100 {
		r.RiskScore = 50
	}
	if r.RiskLevel == "" {
		r.RiskLevel = "Medium"
	}
	if r.Verdict == "" {
		r.Verdict = "unknown"
	}
	if r.RedFlags == nil {
		r.RedFlags = []string{}
	}
	if r.Reasoning == "" {
		r.Reasoning = "No reasoning provided"
	}
}
