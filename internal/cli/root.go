// Package cli implements the verijob command: a serve subcommand that runs
// the web service and an analyze subcommand for one-shot scans from the
// terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verijob/verijob/internal/analyzer"
	"github.com/verijob/verijob/internal/app"
	"github.com/verijob/verijob/internal/config"
	"github.com/verijob/verijob/internal/llm"
	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/model"
	"github.com/verijob/verijob/internal/scraper"
	"github.com/verijob/verijob/internal/server"
	"github.com/verijob/verijob/internal/web"
	"github.com/verijob/verijob/internal/webclient"
)

var (
	configPath   string
	listenAddr   string
	analysisType string
	inputFile    string
)

var rootCmd = &cobra.Command{
	Use:   "verijob",
	Short: "Detect fraudulent job postings",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text or URL]",
	Short: "Run a one-shot analysis from the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := ""
		if len(args) > 0 {
			input = args[0]
		}
		return runAnalyze(cmd.Context(), input)
	},
}

func Execute() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address override, e.g. :8080")
	analyzeCmd.Flags().StringVarP(&analysisType, "type", "t", "quick", "Analysis type: quick|detailed")
	analyzeCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Read the job description from a file")
	rootCmd.AddCommand(serveCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) logging.Logger {
	if cfg.Logging.Mode == "zap" {
		return logging.NewZapLogger("verijob")
	}
	return logging.NewStdoutLogger("verijob")
}

func runServe() error {
	printBanner()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Addr = listenAddr
	}
	logger := newLogger(cfg)

	webclient.RegisterDefaultBackends()

	if err := os.MkdirAll(cfg.Storage.Path, 0755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		return err
	}
	if err := application.Start(); err != nil {
		return err
	}

	srv, err := server.NewServer(server.Config{
		ListenAddr:           cfg.Server.Addr,
		AnalyzeRatePerMinute: cfg.Server.AnalyzeRatePerMinute,
		Logger:               logger,
	}, application)
	if err != nil {
		return err
	}

	frontend, err := web.NewFrontend(application, logger)
	if err != nil {
		return err
	}
	frontend.Mount(srv.Router())

	httpSrv := srv.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.Field{Key: "addr", Value: cfg.Server.Addr})
		errCh <- httpSrv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stop:
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	return application.Shutdown(shutdownCtx)
}

// runAnalyze scans a posting without the databases: rule checks plus
// scraping, and the LLM path when an API key is configured.
func runAnalyze(ctx context.Context, input string) error {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return err
		}
		input = string(data)
	}
	if input == "" {
		return errors.New("provide a job description, URL, or --file")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	webclient.RegisterDefaultBackends()
	client, err := webclient.NewWebClient(&webclient.Config{
		Backend: cfg.WebClient.Backend,
		Timeout: cfg.WebClient.Timeout,
	}, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	scr, err := scraper.NewScraper(client, logger)
	if err != nil {
		return err
	}

	opts := analyzer.Options{Scraper: scr, Logger: logger}
	if cfg.LLM.APIKey != "" {
		opts.LLM = llm.NewOpenRouterAnalyzer(cfg.LLM.APIKey, cfg.LLM.Model, logger)
	}
	det := analyzer.New(opts)

	req, buildErr := web.BuildAnalysisRequest(input, analysisType)
	if buildErr != nil {
		return buildErr
	}

	resp, err := det.Analyze(ctx, req)
	if err != nil {
		return err
	}
	printResult(resp)
	return nil
}

func printResult(resp *model.AnalysisResponse) {
	if resp.Error != "" {
		color.Red("Error: %s", resp.Error)
		return
	}

	verdict := color.New(color.FgGreen, color.Bold)
	switch resp.RiskColor {
	case "danger":
		verdict = color.New(color.FgRed, color.Bold)
	case "warning":
		verdict = color.New(color.FgYellow, color.Bold)
	}
	_, _ = verdict.Printf("%s (risk %d/100, %s)\n", resp.Verdict, resp.RiskScore, resp.RiskLevel)

	if resp.Analysis != nil && len(resp.Analysis.RedFlags) > 0 {
		fmt.Println("\nRed flags:")
		for _, f := range resp.Analysis.RedFlags {
			color.Yellow("  - %s", f)
		}
	}
	if len(resp.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, r := range resp.Recommendations {
			fmt.Printf("  - %s\n", r)
		}
	}
	if resp.Performance != nil {
		fmt.Printf("\nCompleted in %.2fs (%s)\n", resp.Performance.AnalysisTime, resp.Performance.Method)
	}
}
