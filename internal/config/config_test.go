package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verijob/verijob/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.WebClient.Backend != "nethttp" {
		t.Errorf("Backend = %q", cfg.WebClient.Backend)
	}
	if cfg.WebClient.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.WebClient.Timeout)
	}
	if cfg.LLM.APIKey != "" {
		t.Error("default config should carry no API key")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `server:
  addr: ":9999"
  analyze_rate_per_minute: 5
storage:
  path: /var/lib/verijob
webclient:
  backend: chromedp
  timeout: 30s
logging:
  mode: zap
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.AnalyzeRatePerMinute != 5 {
		t.Errorf("AnalyzeRatePerMinute = %d", cfg.Server.AnalyzeRatePerMinute)
	}
	if cfg.WebClient.Backend != "chromedp" {
		t.Errorf("Backend = %q", cfg.WebClient.Backend)
	}
	if cfg.WebClient.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.WebClient.Timeout)
	}
	if cfg.Logging.Mode != "zap" {
		t.Errorf("Mode = %q", cfg.Logging.Mode)
	}
	// Sections the file omits keep their defaults.
	if cfg.LLM.Model != "meta-llama/llama-3-8b-instruct" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9999\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VERIJOB_ADDR", ":7777")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("Addr = %q, env should win over file", cfg.Server.Addr)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.LLM.APIKey)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("malformed config should error")
	}
}
