package recommend_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/verijob/verijob/internal/model"
	"github.com/verijob/verijob/internal/recommend"
	"github.com/verijob/verijob/internal/store"
	"github.com/verijob/verijob/internal/testutil"

	_ "modernc.org/sqlite"
)

func newEngine(t *testing.T) (*recommend.Engine, *store.Store) {
	t.Helper()

	conn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "verijob.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st, err := store.New(conn, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return recommend.NewEngine(st, &testutil.DummyLogger{}), st
}

func addJob(t *testing.T, st *store.Store, title, desc string, score int) {
	t.Helper()
	_, _, err := st.SaveAnalysis(context.Background(),
		&model.JobPosting{URL: "https://jobs.example/" + title, CompanyName: "Acme", JobTitle: title, Description: desc},
		&model.AnalysisRecord{RiskScore: score, RiskLevel: "Low", Verdict: "Likely Legitimate", DetectionMethod: model.MethodQuick},
		nil, model.CompanyLegitimacy{})
	if err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
}

func TestForUser_RanksByProfileMatch(t *testing.T) {
	t.Parallel()
	eng, st := newEngine(t)

	addJob(t, st, "Backend Engineer", "Build distributed systems in Go with Kubernetes and Postgres", 10)
	addJob(t, st, "Pastry Chef", "Bake croissants and manage the morning kitchen shift", 5)

	user := &model.User{
		Qualifications:   "Go, distributed systems",
		FieldsOfInterest: "backend",
	}
	recs, err := eng.ForUser(context.Background(), user, 10)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	if recs[0].Title != "Backend Engineer" {
		t.Errorf("top recommendation = %q, want Backend Engineer", recs[0].Title)
	}
	if recs[0].Match <= recs[1].Match {
		t.Errorf("match scores not descending: %v then %v", recs[0].Match, recs[1].Match)
	}
}

func TestForUser_ExcludesRiskyJobs(t *testing.T) {
	t.Parallel()
	eng, st := newEngine(t)

	addJob(t, st, "Safe Role", "Regular engineering position with a normal process", 10)
	addJob(t, st, "Risky Role", "Suspicious engineering position", 80)

	recs, err := eng.ForUser(context.Background(), &model.User{}, 10)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "Safe Role" {
		t.Errorf("recs = %+v, want only Safe Role", recs)
	}
}

func TestForUser_EmptyProfileGetsZeroMatch(t *testing.T) {
	t.Parallel()
	eng, st := newEngine(t)

	addJob(t, st, "Any Role", "Some description for a perfectly ordinary position", 0)

	recs, err := eng.ForUser(context.Background(), &model.User{}, 10)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	if recs[0].Match != 0 {
		t.Errorf("empty profile match = %v, want 0", recs[0].Match)
	}
}

func TestForUser_LimitApplies(t *testing.T) {
	t.Parallel()
	eng, st := newEngine(t)

	for _, title := range []string{"A", "B", "C", "D", "E"} {
		addJob(t, st, title, "Shared description mentioning engineering work", 5)
	}

	recs, err := eng.ForUser(context.Background(), &model.User{FieldsOfInterest: "engineering"}, 3)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("got %d recommendations, want 3", len(recs))
	}
}
