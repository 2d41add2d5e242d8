package web_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/verijob/verijob/internal/app"
	"github.com/verijob/verijob/internal/auth"
	"github.com/verijob/verijob/internal/config"
	"github.com/verijob/verijob/internal/model"
	"github.com/verijob/verijob/internal/recommend"
	"github.com/verijob/verijob/internal/store"
	"github.com/verijob/verijob/internal/testutil"
	"github.com/verijob/verijob/internal/web"
	"github.com/verijob/verijob/internal/webclient"

	_ "modernc.org/sqlite"
)

const longScammyText = "URGENT hiring!! No experience needed, high salary guaranteed. " +
	"Payment in Bitcoin, contact us on Telegram today."

func newTestFrontend(t *testing.T) (http.Handler, *app.Application) {
	t.Helper()
	webclient.RegisterDefaultBackends()

	cfg := config.Default()
	cfg.Storage.Path = t.TempDir()

	application, err := app.NewApplication(cfg, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(func() { _ = application.Shutdown(context.Background()) })

	f, err := web.NewFrontend(application, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewFrontend: %v", err)
	}
	r := chi.NewRouter()
	f.Mount(r)
	return r, application
}

func submitAnalyze(t *testing.T, h http.Handler, input, analysisType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"job_input": {input}, "analysis_type": {analysisType}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLandingRenders(t *testing.T) {
	h, _ := newTestFrontend(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "job_input") {
		t.Error("analyze form missing")
	}
	if !strings.Contains(body, "VeriJob") {
		t.Error("header missing")
	}
}

func TestAnalyzeForm_EmptyInputShowsErrorLocally(t *testing.T) {
	h, application := newTestFrontend(t)

	rec := submitAnalyze(t, h, "   ", "quick", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), web.ErrEmptyInput.Error()) {
		t.Error("empty-input error not rendered")
	}
	// Nothing was analyzed or persisted.
	stats, err := application.Store.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalAnalyzed != 0 {
		t.Errorf("TotalAnalyzed = %d, want 0", stats.TotalAnalyzed)
	}
}

func TestAnalyzeForm_RecoverableErrorTakesErrorPanel(t *testing.T) {
	h, _ := newTestFrontend(t)

	rec := submitAnalyze(t, h, "too short", "quick", nil)
	body := rec.Body.String()
	if !strings.Contains(body, "Job description too short") {
		t.Error("error panel missing")
	}
	if strings.Contains(body, "flag-tile") {
		t.Error("result panel rendered alongside an error")
	}
}

func TestAnalyzeForm_RendersEightFlagTiles(t *testing.T) {
	h, _ := newTestFrontend(t)

	rec := submitAnalyze(t, h, longScammyText, "quick", nil)
	body := rec.Body.String()
	if got := strings.Count(body, `class="flag-tile`); got != web.FlagTileCount {
		t.Errorf("flag tiles = %d, want %d", got, web.FlagTileCount)
	}
	if !strings.Contains(body, web.NoFlagPlaceholder) {
		t.Error("placeholder tiles missing")
	}
}

func TestAnalyzeForm_IssuesVisitorCookie(t *testing.T) {
	h, _ := newTestFrontend(t)

	rec := submitAnalyze(t, h, longScammyText, "quick", nil)
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "vid" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("visitor cookie not issued")
	}
}

// fixedDetector returns a canned response, letting the tests exercise the
// rendering paths with responses the real pipeline would not produce.
type fixedDetector struct {
	resp *model.AnalysisResponse
}

func (d *fixedDetector) Analyze(ctx context.Context, req *model.AnalysisRequest) (*model.AnalysisResponse, error) {
	return d.resp, nil
}

func (d *fixedDetector) Close() error { return nil }

func TestAnalyzeForm_ErrorFieldOverridesResult(t *testing.T) {
	logger := &testutil.DummyLogger{}
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.New(db, logger)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	det := &fixedDetector{resp: &model.AnalysisResponse{
		Error:     "Failed to scrape job posting",
		RiskScore: 75,
		Verdict:   "Likely Fraudulent",
		Analysis:  &model.AnalysisDetail{RedFlags: []string{"some flag"}},
	}}
	application := &app.Application{
		Logger:   logger,
		Store:    st,
		Orch:     app.NewOrchestrator(det, logger),
		Sessions: auth.NewSessions(),
		Rec:      recommend.NewEngine(st, logger),
	}

	f, err := web.NewFrontend(application, logger)
	if err != nil {
		t.Fatalf("NewFrontend: %v", err)
	}
	r := chi.NewRouter()
	f.Mount(r)

	rec := submitAnalyze(t, r, longScammyText, "quick", nil)
	body := rec.Body.String()
	if !strings.Contains(body, "Failed to scrape job posting") {
		t.Error("error panel missing")
	}
	// The populated score and flags must not render once error is set.
	if strings.Contains(body, "flag-tile") || strings.Contains(body, "Likely Fraudulent") {
		t.Error("result fields rendered despite error field")
	}
}

func TestSignUpFlow(t *testing.T) {
	h, _ := newTestFrontend(t)

	form := url.Values{
		"username": {"newbie"},
		"email":    {"newbie@example.com"},
		"password": {"correct-horse"},
	}
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("session cookie not set after signup")
	}

	// The landing page now greets the signed-in user.
	landing := httptest.NewRequest(http.MethodGet, "/", nil)
	landing.AddCookie(session)
	landingRec := httptest.NewRecorder()
	h.ServeHTTP(landingRec, landing)
	if !strings.Contains(landingRec.Body.String(), "newbie") {
		t.Error("signed-in username missing from landing page")
	}
}

func TestSignUp_ValidationError(t *testing.T) {
	h, _ := newTestFrontend(t)

	form := url.Values{
		"username": {"x"},
		"email":    {"not-an-email"},
		"password": {"correct-horse"},
	}
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want re-rendered form", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email address") {
		t.Error("validation error not rendered")
	}
}

func TestProfileRequiresLogin(t *testing.T) {
	h, _ := newTestFrontend(t)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want redirect to login", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q", loc)
	}
}
