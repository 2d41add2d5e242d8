package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/verijob/verijob/internal/app"
	"github.com/verijob/verijob/internal/auth"
	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/model"
	"github.com/verijob/verijob/internal/scamdb"
	"github.com/verijob/verijob/internal/store"
)

// Server is the HTTP + WebSocket API surface.
type Server struct {
	cfg      Config
	app      *app.Application
	router   chi.Router
	upgrader websocket.Upgrader
	limiter  *rate.Limiter
	logger   logging.Logger
}

// NewServer wires the API around an already-constructed Application.
func NewServer(cfg Config, application *app.Application) (*Server, error) {
	if application == nil {
		return nil, errors.New("server: application is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	var limiter *rate.Limiter
	if cfg.AnalyzeRatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.AnalyzeRatePerMinute)/60), cfg.AnalyzeRatePerMinute)
	}

	s := &Server{
		cfg:     cfg,
		app:     application,
		router:  chi.NewRouter(),
		limiter: limiter,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/api/analyze", s.optionsHandler("POST"))
	r.Options("/api/register", s.optionsHandler("POST"))
	r.Options("/api/login", s.optionsHandler("POST"))
	r.Options("/api/logout", s.optionsHandler("POST"))
	r.Options("/api/edit_profile", s.optionsHandler("POST"))
	r.Options("/api/report_scam", s.optionsHandler("POST"))
	r.Options("/api/report", s.optionsHandler("POST"))
	r.Options("/api/recent_alerts", s.optionsHandler("GET"))
	r.Options("/api/stats", s.optionsHandler("GET"))
	r.Options("/api/job/{jobID}", s.optionsHandler("GET"))
	r.Options("/api/recommendations", s.optionsHandler("GET"))

	r.Post("/api/analyze", s.handleAnalyze)
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/logout", s.handleLogout)
	r.Post("/api/edit_profile", s.handleEditProfile)
	r.Post("/api/report_scam", s.handleReportScam)
	r.Post("/api/report", s.handleReport)
	r.Get("/api/recent_alerts", s.handleRecentAlerts)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/job/{jobID}", s.handleJobDetails)
	r.Get("/api/recommendations", s.handleRecommendations)

	// Streaming analysis over websocket
	r.Get("/ws/analyze", s.handleAnalyzeWS)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// Router exposes the chi router so the web frontend can mount alongside the
// API.
func (s *Server) Router() chi.Router {
	return s.router
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// currentUser resolves the session from the Authorization header or the
// session cookie. Empty string means anonymous.
func (s *Server) currentUser(r *http.Request) string {
	token := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	} else if c, err := r.Cookie("session"); err == nil {
		token = c.Value
	}
	if token == "" {
		return ""
	}
	userID, err := s.app.Sessions.Resolve(token)
	if err != nil {
		return ""
	}
	return userID
}

// --- Analysis ---

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again shortly")
		return
	}

	var req model.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	resp, err := s.app.Orch.Analyze(r.Context(), &req)
	if err != nil {
		s.logger.Warn("analysis aborted", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if resp.Error != "" {
		// Recoverable input problems still answer 200 with the error field
		// set; clients render the error path.
		writeJSON(w, http.StatusOK, resp)
		return
	}
	s.logger.Info("analysis served",
		logging.Field{Key: "score", Value: resp.RiskScore},
		logging.Field{Key: "method", Value: resp.DetectionMethod})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	var req model.AnalysisRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(ErrorResponse{Error: "invalid JSON"})
		return
	}

	sessionKey := s.currentUser(r)
	if sessionKey == "" {
		sessionKey = r.RemoteAddr
	}

	job, started := s.app.Orch.StartAnalysis(r.Context(), sessionKey, &req)
	if !started {
		// An analysis is already running for this session; attach to it.
		s.logger.Info("analysis already in flight", logging.Field{Key: "job_id", Value: job.ID})
	}
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.app.Orch.CancelJob(job.ID)
			return
		}
	}
}

// --- Accounts ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	body.Username = strings.TrimSpace(body.Username)
	body.Email = strings.TrimSpace(body.Email)

	switch {
	case body.Username == "" || body.Email == "" || body.Password == "":
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	case !auth.ValidEmail(body.Email):
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	case len(body.Password) < auth.MinPasswordLength:
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	user, err := s.app.Store.CreateUser(r.Context(), &model.User{
		Username:         body.Username,
		Email:            body.Email,
		Password:         hash,
		Qualifications:   strings.TrimSpace(body.Qualifications),
		FieldsOfInterest: strings.TrimSpace(body.FieldsOfInterest),
	})
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			writeError(w, http.StatusConflict, "an account with that email or username already exists")
			return
		}
		s.logger.Warn("creating user", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token := s.app.Sessions.Issue(user.ID)
	s.logger.Info("registered user", logging.Field{Key: "user_id", Value: user.ID})
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, UserID: user.ID, Username: user.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := s.app.Store.GetUserByEmail(r.Context(), strings.TrimSpace(body.Email))
	if err != nil || !auth.CheckPassword(user.Password, body.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token := s.app.Sessions.Issue(user.ID)
	s.logger.Info("user logged in", logging.Field{Key: "user_id", Value: user.ID})
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, UserID: user.ID, Username: user.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		s.app.Sessions.Revoke(strings.TrimPrefix(h, "Bearer "))
	} else if c, err := r.Cookie("session"); err == nil {
		s.app.Sessions.Revoke(c.Value)
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleEditProfile(w http.ResponseWriter, r *http.Request) {
	userID := s.currentUser(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body EditProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := s.app.Store.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if v := strings.TrimSpace(body.Username); v != "" {
		user.Username = v
	}
	if v := strings.TrimSpace(body.Email); v != "" {
		if !auth.ValidEmail(v) {
			writeError(w, http.StatusBadRequest, "invalid email address")
			return
		}
		user.Email = v
	}
	if body.Password != "" {
		if len(body.Password) < auth.MinPasswordLength {
			writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}
		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not hash password")
			return
		}
		user.Password = hash
	}
	if body.Qualifications != "" {
		user.Qualifications = body.Qualifications
	}
	if body.FieldsOfInterest != "" {
		user.FieldsOfInterest = body.FieldsOfInterest
	}

	if err := s.app.Store.UpdateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			writeError(w, http.StatusConflict, "email or username already taken")
			return
		}
		s.logger.Warn("updating user", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("updated profile", logging.Field{Key: "user_id", Value: userID})
	writeJSON(w, http.StatusOK, user)
}

// --- Reports ---

func (s *Server) handleReportScam(w http.ResponseWriter, r *http.Request) {
	var body ReportScamRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.app.ScamDB.Add(r.Context(), body.Email, body.Phone); err != nil {
		if errors.Is(err, scamdb.ErrNoContact) {
			writeError(w, http.StatusBadRequest, "email or phone is required")
			return
		}
		s.logger.Warn("adding scam contact", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("scam contact reported")
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	userID := s.currentUser(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.JobID == "" || strings.TrimSpace(body.Reason) == "" {
		writeError(w, http.StatusBadRequest, "job_id and reason are required")
		return
	}

	reportID, err := s.app.Store.CreateReport(r.Context(), body.JobID, userID, body.Reason, body.Experience)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrJobNotFound):
			writeError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, store.ErrDuplicateReport):
			writeError(w, http.StatusConflict, "you already reported this job")
		default:
			s.logger.Warn("creating report", logging.Field{Key: "error", Value: err.Error()})
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.logger.Info("report filed",
		logging.Field{Key: "job_id", Value: body.JobID},
		logging.Field{Key: "report_id", Value: reportID})
	writeJSON(w, http.StatusCreated, map[string]string{"report_id": reportID})
}

// --- Read endpoints ---

func (s *Server) handleRecentAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	alerts, err := s.app.Store.RecentAlerts(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing recent alerts", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "alerts": alerts})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.app.Store.Stats(r.Context())
	if err != nil {
		s.logger.Warn("computing stats", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleJobDetails(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	details, err := s.app.Store.GetJobDetails(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Warn("getting job details", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := s.currentUser(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := s.app.Store.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	limit := 10
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	recs, err := s.app.Rec.ForUser(r.Context(), user, limit)
	if err != nil {
		s.logger.Warn("building recommendations", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "recommendations": recs})
}
