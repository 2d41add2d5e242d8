// Package recommend ranks stored low-risk postings against a user's
// qualifications and fields of interest using term-frequency cosine
// similarity plus a direct-interest bonus.
package recommend

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/model"
	"github.com/verijob/verijob/internal/store"
)

// MaxRiskScore is the highest risk score a posting may have and still be
// recommended.
const MaxRiskScore = 30

// Recommendation is one ranked posting.
type Recommendation struct {
	JobID     string  `json:"job_id"`
	Title     string  `json:"title"`
	Company   string  `json:"company,omitempty"`
	URL       string  `json:"url,omitempty"`
	RiskScore int     `json:"risk_score"`
	Match     float64 `json:"match_score"`
}

type Engine struct {
	store  *store.Store
	logger logging.Logger
}

func NewEngine(st *store.Store, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewStdoutLogger("recommend")
	}
	return &Engine{
		store:  st,
		logger: logger.With(logging.Field{Key: "component", Value: "recommend"}),
	}
}

// ForUser ranks safe stored postings for the user. Users with no stated
// interests or qualifications get the newest safe postings with zero match
// scores.
func (e *Engine) ForUser(ctx context.Context, user *model.User, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = 10
	}

	jobs, err := e.store.SafeJobs(ctx, MaxRiskScore, limit*5)
	if err != nil {
		return nil, err
	}

	interests := parseList(user.FieldsOfInterest)
	profile := strings.Join(append(parseList(user.Qualifications), interests...), " ")
	profileTerms := termCounts(profile)

	recs := make([]Recommendation, 0, len(jobs))
	for _, j := range jobs {
		text := j.Job.JobTitle + " " + j.Job.Description
		match := cosine(profileTerms, termCounts(text))
		for _, interest := range interests {
			if interest != "" && strings.Contains(strings.ToLower(text), interest) {
				match += 0.1
			}
		}
		if match > 1 {
			match = 1
		}

		url := j.Job.URL
		if url == store.ManualEntryURL {
			url = ""
		}
		recs = append(recs, Recommendation{
			JobID:     j.Job.ID,
			Title:     j.Job.JobTitle,
			Company:   j.Job.CompanyName,
			URL:       url,
			RiskScore: j.RiskScore,
			Match:     math.Round(match*100) / 100,
		})
	}

	sort.SliceStable(recs, func(i, k int) bool { return recs[i].Match > recs[k].Match })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

var splitRe = regexp.MustCompile(`[,;\n]`)

// parseList splits comma/semicolon/newline separated profile text.
func parseList(text string) []string {
	var out []string
	for _, item := range splitRe.Split(text, -1) {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

var wordRe = regexp.MustCompile(`[a-z0-9+#]+`)

func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) > 2 || w == "go" || w == "c#" || w == "c++" {
			counts[w]++
		}
	}
	return counts
}

func cosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, na, nb float64
	for w, ca := range a {
		na += float64(ca * ca)
		if cb, ok := b[w]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range b {
		nb += float64(cb * cb)
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
