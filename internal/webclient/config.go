package webclient

import "time"

// Backend names accepted by the factory.
const (
	BackendNetHTTP  = "nethttp"
	BackendChromeDP = "chromedp"
)

// Config is the minimal configuration required for constructing a WebClient.
type Config struct {
	// Backend selects the registered backend; empty means nethttp.
	Backend string

	// Timeout applies to each fetch. Zero means the 10s default.
	Timeout time.Duration

	// MaxRetries is the nethttp retry budget for transport failures and
	// 429s. Zero means no retries.
	MaxRetries int

	// IdleAfter is how long the chromedp backend waits for network silence
	// before snapshotting the DOM. Zero means the 2s default.
	IdleAfter time.Duration

	// Headless controls the chromedp browser window. Defaults to true.
	Headless *bool
}

func (c *Config) timeout() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return 10 * time.Second
	}
	return c.Timeout
}

func (c *Config) idleAfter() time.Duration {
	if c == nil || c.IdleAfter <= 0 {
		return 2 * time.Second
	}
	return c.IdleAfter
}
