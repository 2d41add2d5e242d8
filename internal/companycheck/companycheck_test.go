package companycheck_test

import (
	"context"
	"testing"

	"github.com/verijob/verijob/internal/companycheck"
	"github.com/verijob/verijob/internal/testutil"
)

func newChecker(t *testing.T, client *testutil.DummyWebClient) *companycheck.Checker {
	t.Helper()
	c, err := companycheck.NewChecker(client, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	return c
}

func TestWebsiteExists(t *testing.T) {
	t.Parallel()

	client := &testutil.DummyWebClient{
		StatusCodes: map[string]int{
			"https://acme.example":          200,
			"https://gone.example":          404,
			"https://www.initech.example/x": 200,
		},
		FailURLs: map[string]bool{"https://down.example": true},
	}
	c := newChecker(t, client)
	ctx := context.Background()

	tests := []struct {
		url  string
		want bool
	}{
		{"https://acme.example", true},
		{"acme.example", true}, // scheme defaulted to https
		{"https://gone.example", false},
		{"https://down.example", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.WebsiteExists(ctx, tt.url); got != tt.want {
			t.Errorf("WebsiteExists(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestLinkedInExists_SlugsCompanyName(t *testing.T) {
	t.Parallel()

	client := &testutil.DummyWebClient{
		StatusCodes: map[string]int{
			"https://www.linkedin.com/company/acme-robotics":  200,
			"https://www.linkedin.com/company/smith-and-sons": 200,
		},
	}
	c := newChecker(t, client)
	ctx := context.Background()

	if !c.LinkedInExists(ctx, "Acme Robotics") {
		t.Error("spaced name should slug to acme-robotics")
	}
	if !c.LinkedInExists(ctx, "Smith & Sons") {
		t.Error("ampersand should slug to and")
	}
	if c.LinkedInExists(ctx, "") {
		t.Error("empty name should report false without a request")
	}
}

func TestCheck_CombinesSignals(t *testing.T) {
	t.Parallel()

	client := &testutil.DummyWebClient{
		StatusCodes: map[string]int{
			"https://acme.example":                  200,
			"https://www.linkedin.com/company/acme": 200,
		},
	}
	c := newChecker(t, client)

	got := c.Check(context.Background(), "Acme", "https://acme.example")
	if !got.WebsiteExists || !got.LinkedInExists {
		t.Errorf("Check = %+v, want both signals true", got)
	}
	if got.Website != "https://acme.example" {
		t.Errorf("Website = %q", got.Website)
	}

	empty := c.Check(context.Background(), "", "")
	if empty.WebsiteExists || empty.LinkedInExists {
		t.Errorf("empty Check = %+v", empty)
	}
}
