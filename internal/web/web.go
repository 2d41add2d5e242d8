// Package web serves the server-rendered screens: the landing page with the
// analyze form, sign-up, login and the profile screen.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/verijob/verijob/internal/app"
	"github.com/verijob/verijob/internal/auth"
	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/model"
	"github.com/verijob/verijob/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	sessionCookie = "session"
	visitorCookie = "vid"
)

// Frontend renders the screens on top of the shared application services.
type Frontend struct {
	app    *app.Application
	tmpl   *template.Template
	logger logging.Logger
}

func NewFrontend(application *app.Application, logger logging.Logger) (*Frontend, error) {
	if application == nil {
		return nil, errors.New("web: application is required")
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Frontend{app: application, tmpl: tmpl, logger: logger}, nil
}

// Mount registers the screen routes on the router.
func (f *Frontend) Mount(r chi.Router) {
	r.Get("/", f.handleLanding)
	r.Post("/analyze", f.handleAnalyzeForm)
	r.Get("/signup", f.handleSignUpForm)
	r.Post("/signup", f.handleSignUp)
	r.Get("/login", f.handleLoginForm)
	r.Post("/login", f.handleLogin)
	r.Get("/logout", f.handleLogout)
	r.Get("/profile", f.handleProfile)
	r.Post("/profile", f.handleEditProfile)

	staticRoot, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))))
}

func (f *Frontend) render(w http.ResponseWriter, screen Screen) {
	var data any
	switch screen.Kind {
	case ScreenLanding:
		data = screen.Landing
	case ScreenSignUp:
		data = screen.SignUp
	case ScreenLogin:
		data = screen.Login
	case ScreenProfile:
		data = screen.Profile
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := f.tmpl.ExecuteTemplate(w, string(screen.Kind), data); err != nil {
		f.logger.Error("rendering screen",
			logging.Field{Key: "screen", Value: string(screen.Kind)},
			logging.Field{Key: "error", Value: err.Error()})
	}
}

// user resolves the signed-in account from the session cookie, nil for
// anonymous visitors.
func (f *Frontend) user(r *http.Request) *model.User {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	userID, err := f.app.Sessions.Resolve(c.Value)
	if err != nil {
		return nil
	}
	u, err := f.app.Store.GetUserByID(r.Context(), userID)
	if err != nil {
		return nil
	}
	return u
}

// visitorKey identifies the browser for the per-session in-flight guard,
// preferring the login session and falling back to a visitor cookie.
func (f *Frontend) visitorKey(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if c, err := r.Cookie(visitorCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: visitorCookie, Value: id, Path: "/", HttpOnly: true})
	return id
}

func (f *Frontend) landingData(r *http.Request) *LandingData {
	data := &LandingData{User: f.user(r), AnalysisType: model.AnalysisQuick}
	if stats, err := f.app.Store.Stats(r.Context()); err == nil {
		data.Stats = stats
	}
	if alerts, err := f.app.Store.RecentAlerts(r.Context(), 5); err == nil {
		data.Alerts = alerts
	}
	return data
}

func (f *Frontend) handleLanding(w http.ResponseWriter, r *http.Request) {
	f.render(w, NewLanding(f.landingData(r)))
}

func (f *Frontend) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	data := f.landingData(r)
	data.Input = r.PostFormValue("job_input")
	data.AnalysisType = strings.ToLower(strings.TrimSpace(r.PostFormValue("analysis_type")))

	req, err := BuildAnalysisRequest(data.Input, data.AnalysisType)
	if err != nil {
		// Empty input short-circuits locally; no analysis starts.
		data.Error = err.Error()
		f.render(w, NewLanding(data))
		return
	}
	data.AnalysisType = req.AnalysisType

	key := f.visitorKey(w, r)
	if f.app.Orch.InFlight(key) {
		// A submission is already running for this visitor; re-submitting
		// is a no-op.
		data.InFlight = true
		f.render(w, NewLanding(data))
		return
	}

	job, started := f.app.Orch.StartAnalysis(context.Background(), key, req)
	if !started {
		data.InFlight = true
		f.render(w, NewLanding(data))
		return
	}

	var resp *model.AnalysisResponse
	for ev := range job.Events {
		switch ev.Type {
		case app.JobEventResult:
			resp = ev.Result
		case app.JobEventStatus:
			if ev.Status == app.JobFailed || ev.Status == app.JobCanceled {
				data.Error = ev.Error
			}
		}
	}

	switch {
	case resp == nil && data.Error == "":
		data.Error = "Analysis did not complete, please try again"
	case resp != nil && resp.Error != "":
		// A server-reported error overrides normal rendering even when
		// other fields are populated.
		data.Error = resp.Error
	case resp != nil:
		data.Result = ResultViewFrom(resp)
	}
	f.render(w, NewLanding(data))
}

// --- Auth screens ---

func (f *Frontend) handleSignUpForm(w http.ResponseWriter, r *http.Request) {
	f.render(w, NewSignUp(&FormData{User: f.user(r)}))
}

func (f *Frontend) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	data := &FormData{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
	}
	password := r.PostFormValue("password")

	switch {
	case data.Username == "" || data.Email == "" || password == "":
		data.Error = "All fields are required"
	case !auth.ValidEmail(data.Email):
		data.Error = "Invalid email address"
	case len(password) < auth.MinPasswordLength:
		data.Error = "Password must be at least 8 characters"
	}
	if data.Error != "" {
		f.render(w, NewSignUp(data))
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		data.Error = "Could not process password"
		f.render(w, NewSignUp(data))
		return
	}

	user, err := f.app.Store.CreateUser(r.Context(), &model.User{
		Username:         data.Username,
		Email:            data.Email,
		Password:         hash,
		Qualifications:   strings.TrimSpace(r.PostFormValue("qualifications")),
		FieldsOfInterest: strings.TrimSpace(r.PostFormValue("fields_of_interest")),
	})
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			data.Error = "An account with that email or username already exists"
		} else {
			f.logger.Warn("creating user", logging.Field{Key: "error", Value: err.Error()})
			data.Error = "Could not create account"
		}
		f.render(w, NewSignUp(data))
		return
	}

	f.signIn(w, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (f *Frontend) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	f.render(w, NewLogin(&FormData{User: f.user(r)}))
}

func (f *Frontend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	data := &FormData{Email: strings.TrimSpace(r.PostFormValue("email"))}
	password := r.PostFormValue("password")

	user, err := f.app.Store.GetUserByEmail(r.Context(), data.Email)
	if err != nil || !auth.CheckPassword(user.Password, password) {
		data.Error = "Invalid email or password"
		f.render(w, NewLogin(data))
		return
	}

	f.signIn(w, user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (f *Frontend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		f.app.Sessions.Revoke(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (f *Frontend) signIn(w http.ResponseWriter, userID string) {
	token := f.app.Sessions.Issue(userID)
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
}

// --- Profile ---

func (f *Frontend) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := f.user(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	section := r.URL.Query().Get("section")
	switch section {
	case SectionHistory, SectionDownloads, SectionEdit:
	default:
		section = SectionHistory
	}

	data := &ProfileData{User: user, Section: section}
	if section == SectionHistory {
		if alerts, err := f.app.Store.RecentAlerts(r.Context(), 10); err == nil {
			data.Alerts = alerts
		}
		if recs, err := f.app.Rec.ForUser(r.Context(), user, 5); err == nil {
			data.Recommendations = recs
		}
	}
	f.render(w, NewProfile(data))
}

func (f *Frontend) handleEditProfile(w http.ResponseWriter, r *http.Request) {
	user := f.user(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	data := &ProfileData{User: user, Section: SectionEdit}

	if v := strings.TrimSpace(r.PostFormValue("username")); v != "" {
		user.Username = v
	}
	if v := strings.TrimSpace(r.PostFormValue("email")); v != "" {
		if !auth.ValidEmail(v) {
			data.Error = "Invalid email address"
			f.render(w, NewProfile(data))
			return
		}
		user.Email = v
	}
	if password := r.PostFormValue("password"); password != "" {
		if len(password) < auth.MinPasswordLength {
			data.Error = "Password must be at least 8 characters"
			f.render(w, NewProfile(data))
			return
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			data.Error = "Could not process password"
			f.render(w, NewProfile(data))
			return
		}
		user.Password = hash
	}
	user.Qualifications = strings.TrimSpace(r.PostFormValue("qualifications"))
	user.FieldsOfInterest = strings.TrimSpace(r.PostFormValue("fields_of_interest"))

	if err := f.app.Store.UpdateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			data.Error = "Email or username already taken"
		} else {
			f.logger.Warn("updating user", logging.Field{Key: "error", Value: err.Error()})
			data.Error = "Could not save profile"
		}
		f.render(w, NewProfile(data))
		return
	}

	data.Notice = "Profile saved"
	f.render(w, NewProfile(data))
}
