// Package companycheck verifies company legitimacy signals: does the
// claimed website answer, and does a LinkedIn company page exist. Both are
// best-effort; a check that cannot run simply reports false.
package companycheck

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/verijob/verijob/internal/interfaces"
	"github.com/verijob/verijob/internal/logging"
	"github.com/verijob/verijob/internal/model"
)

type Checker struct {
	client interfaces.WebClient
	logger logging.Logger
}

func NewChecker(client interfaces.WebClient, logger interfaces.Logger) (*Checker, error) {
	if client == nil {
		return nil, errors.New("companycheck: nil webclient")
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("companycheck")
	}
	return &Checker{
		client: client,
		logger: logger.With(logging.Field{Key: "component", Value: "companycheck"}),
	}, nil
}

// WebsiteExists reports whether url answers with HTTP 200. A missing scheme
// is defaulted to https.
func (c *Checker) WebsiteExists(ctx context.Context, url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	resp, err := c.client.Get(ctx, url)
	if err != nil {
		c.logger.Debug("website check failed",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return false
	}
	return resp.StatusCode == http.StatusOK
}

// LinkedInExists reports whether a LinkedIn company page exists for name.
func (c *Checker) LinkedInExists(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "&", "and")

	resp, err := c.client.Get(ctx, "https://www.linkedin.com/company/"+slug)
	if err != nil {
		c.logger.Debug("linkedin check failed",
			logging.Field{Key: "company", Value: name},
			logging.Field{Key: "error", Value: err.Error()})
		return false
	}
	return resp.StatusCode == http.StatusOK
}

// Check runs both signals and returns the combined legitimacy result.
func (c *Checker) Check(ctx context.Context, companyName, websiteURL string) model.CompanyLegitimacy {
	result := model.CompanyLegitimacy{Website: websiteURL}
	if websiteURL != "" {
		result.WebsiteExists = c.WebsiteExists(ctx, websiteURL)
	}
	if companyName != "" {
		result.LinkedInExists = c.LinkedInExists(ctx, companyName)
	}
	return result
}
