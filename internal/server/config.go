package server

import "github.com/verijob/verijob/internal/logging"

type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string

	// AnalyzeRatePerMinute bounds POST /api/analyze. 0 disables limiting.
	AnalyzeRatePerMinute int

	Logger logging.Logger
}
