package webclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verijob/verijob/internal/interfaces"
	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/model"
)

// browserUserAgent is sent on every request; several job boards refuse
// requests without a browser-like UA.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// net/http backed implementation of webclient.
type NetHTTPClient struct {
	client     *http.Client
	logger     logging.Logger
	maxRetries int
	baseDelay  time.Duration
}

func NewNetHTTPClient(cfg *Config, logger interfaces.Logger, httpClient *http.Client) (*NetHTTPClient, error) {
	if logger == nil {
		logger = logging.NewStdoutLogger("webclient")
	}
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "nethttp"})

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout()}
	}

	retries := 0
	if cfg != nil {
		retries = cfg.MaxRetries
	}

	componentLogger.Info("created nethttp webclient",
		logging.Field{Key: "timeout", Value: httpClient.Timeout.String()},
		logging.Field{Key: "max_retries", Value: retries})

	return &NetHTTPClient{
		client:     httpClient,
		logger:     componentLogger,
		maxRetries: retries,
		baseDelay:  2 * time.Second,
	}, nil
}

// Do executes the request, retrying transport failures and 429s with a flat
// backoff. Non-429 HTTP error statuses are returned to the caller on the
// first attempt; retrying a 404 never helps.
func (nhc *NetHTTPClient) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	nhc.logger.Debug("sending http request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: req.URL})

	var lastErr error
	for attempt := 0; attempt <= nhc.maxRetries; attempt++ {
		var bodyReader io.Reader
		if len(req.Body) > 0 {
			bodyReader = bytes.NewReader(req.Body)
		}

		httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		httpReq.Header.Set("User-Agent", browserUserAgent)
		if req.Headers != nil {
			for k, vs := range req.Headers {
				for _, v := range vs {
					httpReq.Header.Add(k, v)
				}
			}
		}

		resp, err := nhc.client.Do(httpReq)
		if err != nil {
			lastErr = err
			nhc.logger.Warn("http request failed",
				logging.Field{Key: "method", Value: method},
				logging.Field{Key: "url", Value: req.URL},
				logging.Field{Key: "attempt", Value: attempt + 1},
				logging.Field{Key: "error", Value: err.Error()})
		} else if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited: %d %s", resp.StatusCode, resp.Status)
			nhc.logger.Warn("http request rate limited",
				logging.Field{Key: "url", Value: req.URL},
				logging.Field{Key: "attempt", Value: attempt + 1})
		} else {
			return nhc.readResponse(req, resp)
		}

		if attempt < nhc.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(nhc.baseDelay):
			}
		}
	}

	return nil, fmt.Errorf("http do: all attempts failed: %w", lastErr)
}

func (nhc *NetHTTPClient) readResponse(req *model.Request, resp *http.Response) (*model.Response, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		nhc.logger.Warn("failed to read response body",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &model.Response{
		Request:    req,
		Body:       body,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now(),
	}, nil
}

// Get is a convenience method for simple GET requests
func (nhc *NetHTTPClient) Get(ctx context.Context, url string) (*model.Response, error) {
	req := &model.Request{
		Method: "GET",
		URL:    url,
	}
	return nhc.Do(ctx, req)
}

func (nhc *NetHTTPClient) Close() error {
	nhc.logger.Info("closing nethttp webclient")
	return nil
}

// HTTPClient returns the underlying *http.Client
func (nhc *NetHTTPClient) HTTPClient() *http.Client {
	return nhc.client
}
