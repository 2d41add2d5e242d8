package webclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/verijob/verijob/internal/testutil"
	"github.com/verijob/verijob/internal/webclient"
)

func newClient(t *testing.T, maxRetries int) *webclient.NetHTTPClient {
	t.Helper()
	c, err := webclient.NewNetHTTPClient(&webclient.Config{MaxRetries: maxRetries}, &testutil.DummyLogger{}, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	return c
}

func TestGet_SendsBrowserUserAgent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.UserAgent(), "Mozilla") {
			t.Errorf("User-Agent = %q, want a browser-like string", r.UserAgent())
		}
		w.Write([]byte("posting body"))
	}))
	defer srv.Close()

	c := newClient(t, 0)
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if string(resp.Body) != "posting body" {
		t.Errorf("Body = %q", resp.Body)
	}
	if resp.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestDo_DoesNotRetryHardErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newClient(t, 3)
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404 handed back", resp.StatusCode)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, retrying a 404 never helps", got)
	}
}

func TestDo_RetriesRateLimiting(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newClient(t, 1)
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get after retry: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d", resp.StatusCode)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2", got)
	}
}

func TestDo_NilRequest(t *testing.T) {
	t.Parallel()

	c := newClient(t, 0)
	if _, err := c.Do(context.Background(), nil); err == nil {
		t.Error("nil request should error")
	}
}

func TestFactory_UnknownBackend(t *testing.T) {
	webclient.RegisterDefaultBackends()

	if _, err := webclient.NewWebClient(&webclient.Config{Backend: "carrier-pigeon"}, &testutil.DummyLogger{}); err == nil {
		t.Error("unknown backend should error")
	}

	c, err := webclient.NewWebClient(&webclient.Config{Backend: "nethttp"}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewWebClient: %v", err)
	}
	defer c.Close()
}
