// Package config loads daemon configuration from an optional YAML file with
// environment-variable overrides. A .env file, if present next to the
// binary, is loaded first (godotenv) so local development needs no exports.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level daemon configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	WebClient WebClientConfig `yaml:"webclient"`
	LLM       LLMConfig       `yaml:"llm"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `yaml:"addr"`
	// AnalyzeRatePerMinute bounds POST /api/analyze; 0 disables limiting.
	AnalyzeRatePerMinute int `yaml:"analyze_rate_per_minute"`
}

type StorageConfig struct {
	// Path is the directory holding verijob.db and scamdb.db.
	Path string `yaml:"path"`
}

type WebClientConfig struct {
	// Backend selects the fetch backend: "nethttp" or "chromedp".
	Backend string `yaml:"backend"`
	// Timeout applies per fetch. Defaults to 10s, matching the scraper
	// contract.
	Timeout time.Duration `yaml:"timeout"`
	// MaxRetries is the nethttp retry budget for transport errors and 429s.
	MaxRetries int `yaml:"max_retries"`
}

// UnmarshalYAML accepts Go duration strings ("30s", "2m") for timeout.
func (w *WebClientConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Backend    string `yaml:"backend"`
		Timeout    string `yaml:"timeout"`
		MaxRetries int    `yaml:"max_retries"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Backend != "" {
		w.Backend = raw.Backend
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("webclient.timeout: %w", err)
		}
		w.Timeout = d
	}
	if raw.MaxRetries != 0 {
		w.MaxRetries = raw.MaxRetries
	}
	return nil
}

type LLMConfig struct {
	// APIKey authenticates against OpenRouter. Empty disables the detailed
	// path; detailed requests then fall back to quick scans.
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type LoggingConfig struct {
	// Mode is "stdout" (JSON lines) or "zap" (production logger).
	Mode string `yaml:"mode"`
}

// Default returns the configuration used when no file and no env are present.
func Default() *Config {
	return &Config{
		Server:    ServerConfig{Addr: ":8080", AnalyzeRatePerMinute: 30},
		Storage:   StorageConfig{Path: "./data"},
		WebClient: WebClientConfig{Backend: "nethttp", Timeout: 10 * time.Second, MaxRetries: 3},
		LLM:       LLMConfig{Model: "meta-llama/llama-3-8b-instruct"},
		Logging:   LoggingConfig{Mode: "stdout"},
	}
}

// Load reads path (if non-empty and present) over the defaults, then applies
// env overrides. Missing files are not an error; a malformed file is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VERIJOB_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("VERIJOB_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("VERIJOB_WEBCLIENT_BACKEND"); v != "" {
		c.WebClient.Backend = v
	}
	if v := os.Getenv("VERIJOB_ANALYZE_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Server.AnalyzeRatePerMinute = n
		}
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENROUTER_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("VERIJOB_LOG_MODE"); v != "" {
		c.Logging.Mode = v
	}
}
