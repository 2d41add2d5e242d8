package model

import (
	"net/http"
	"time"
)

// Request is a backend-agnostic HTTP request passed to a WebClient.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	// Options contains backend-specific options like "render": "true" for chromedp
	Options map[string]string
}

// Response is the result of executing a Request through a WebClient.
type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}
