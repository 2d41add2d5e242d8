package app

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	"github.com/verijob/verijob/internal/analyzer"
	"github.com/verijob/verijob/internal/auth"
	"github.com/verijob/verijob/internal/companycheck"
	"github.com/verijob/verijob/internal/config"
	"github.com/verijob/verijob/internal/interfaces"
	"github.com/verijob/verijob/internal/llm"
	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/recommend"
	"github.com/verijob/verijob/internal/scamdb"
	"github.com/verijob/verijob/internal/scraper"
	"github.com/verijob/verijob/internal/store"
	"github.com/verijob/verijob/internal/webclient"

	_ "modernc.org/sqlite"
)

// Application is the global runtime state container. It owns the shared
// services (store, scam database, orchestrator, sessions) and their
// lifecycles; handlers receive it rather than package-level globals.
type Application struct {
	Config   *config.Config
	Logger   logging.Logger
	Store    *store.Store
	ScamDB   *scamdb.DB
	Orch     *Orchestrator
	Sessions *auth.Sessions
	Rec      *recommend.Engine

	webClient interfaces.WebClient

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication wires the full service graph from config. Both SQLite
// databases live under cfg.Storage.Path.
func NewApplication(cfg *config.Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	client, err := webclient.NewWebClient(&webclient.Config{
		Backend:    cfg.WebClient.Backend,
		Timeout:    cfg.WebClient.Timeout,
		MaxRetries: cfg.WebClient.MaxRetries,
	}, logger)
	if err != nil {
		return nil, err
	}

	mainDB, err := sql.Open("sqlite", filepath.Join(cfg.Storage.Path, "verijob.db"))
	if err != nil {
		client.Close()
		return nil, err
	}
	st, err := store.New(mainDB, logger)
	if err != nil {
		client.Close()
		mainDB.Close()
		return nil, err
	}

	scamConn, err := sql.Open("sqlite", filepath.Join(cfg.Storage.Path, "scamdb.db"))
	if err != nil {
		client.Close()
		st.Close()
		return nil, err
	}
	scam, err := scamdb.New(scamConn, logger)
	if err != nil {
		client.Close()
		st.Close()
		scamConn.Close()
		return nil, err
	}

	scr, err := scraper.NewScraper(client, logger)
	if err != nil {
		client.Close()
		st.Close()
		scam.Close()
		return nil, err
	}
	checker, err := companycheck.NewChecker(client, logger)
	if err != nil {
		client.Close()
		st.Close()
		scam.Close()
		return nil, err
	}

	var llmAnalyzer llm.Analyzer
	if cfg.LLM.APIKey != "" {
		llmAnalyzer = llm.NewOpenRouterAnalyzer(cfg.LLM.APIKey, cfg.LLM.Model, logger)
	} else {
		logger.Warn("no LLM API key configured, detailed analysis will fall back to quick scans")
	}

	detector := analyzer.New(analyzer.Options{
		Scraper: scr,
		ScamDB:  scam,
		LLM:     llmAnalyzer,
		Company: checker,
		Saver:   st,
		Logger:  logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		Config:    cfg,
		Logger:    logger,
		Store:     st,
		ScamDB:    scam,
		Orch:      NewOrchestrator(detector, logger),
		Sessions:  auth.NewSessions(),
		Rec:       recommend.NewEngine(st, logger),
		webClient: client,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start launches background maintenance: a sweep that drops settled
// analysis jobs past their retention window.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case now := <-ticker.C:
				if n := a.Orch.Prune(now); n > 0 {
					a.Logger.Debug("pruned settled jobs", logging.Field{Key: "count", Value: n})
				}
			}
		}
	}()
	a.Logger.Info("application started")
	return nil
}

// Shutdown stops background work and closes the databases and web client.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.cancel()

	var errs []error
	if a.webClient != nil {
		errs = append(errs, a.webClient.Close())
	}
	if a.ScamDB != nil {
		errs = append(errs, a.ScamDB.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	a.Logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
