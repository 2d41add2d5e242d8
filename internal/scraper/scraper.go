// Package scraper turns a job-posting URL into title and plain text for
// analysis. Fetching goes through the configured webclient backend; the
// chromedp backend handles boards that render postings client-side.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/verijob/verijob/internal/interfaces"
	"github.com/verijob/verijob/internal/logging"
)

// maxContentSize caps fetched bodies at 5 MiB.
const maxContentSize = 5 * 1024 * 1024

// MinTextLength is the shortest posting text worth analyzing.
const MinTextLength = 50

var (
	ErrUnsafeURL       = errors.New("invalid or unsafe URL")
	ErrContentTooLarge = errors.New("content too large")
	ErrNoContent       = errors.New("no meaningful content found at URL")
)

// blockedHosts refuses obvious loopback and private-range targets so the
// service cannot be pointed at itself or the local network.
var blockedHosts = []string{"localhost", "127.0.0.1", "0.0.0.0", "192.168.", "10.", "172.16."}

// Posting is the scrape result handed to the analyzer.
type Posting struct {
	Title string
	Text  string
	URL   string
}

type Scraper struct {
	client interfaces.WebClient
	logger logging.Logger
}

func NewScraper(client interfaces.WebClient, logger logging.Logger) (*Scraper, error) {
	if client == nil {
		return nil, errors.New("scraper: nil webclient")
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("scraper")
	}
	return &Scraper{
		client: client,
		logger: logger.With(logging.Field{Key: "component", Value: "scraper"}),
	}, nil
}

// IsValidURL reports whether raw is an absolute http(s) URL that does not
// point at a blocked host.
func IsValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, blocked := range blockedHosts {
		if strings.Contains(host, blocked) {
			return false
		}
	}
	return true
}

// Scrape fetches the posting at rawURL and extracts its title and visible
// text. The text is whitespace-normalized; scripts, styles and navigation
// chrome are stripped.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Posting, error) {
	if !IsValidURL(rawURL) {
		return nil, ErrUnsafeURL
	}

	resp, err := s.client.Get(ctx, rawURL)
	if err != nil {
		s.logger.Warn("fetch failed",
			logging.Field{Key: "url", Value: rawURL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("fetch job posting: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch job posting: unexpected status %d", resp.StatusCode)
	}
	if len(resp.Body) > maxContentSize {
		return nil, ErrContentTooLarge
	}

	posting, err := Extract(resp.Body, rawURL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("scraped job posting",
		logging.Field{Key: "url", Value: rawURL},
		logging.Field{Key: "title", Value: posting.Title},
		logging.Field{Key: "text_chars", Value: len(posting.Text)})

	return posting, nil
}

// Extract pulls title and visible text out of raw HTML.
func Extract(html []byte, rawURL string) (*Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, iframe").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = "Unknown"
	}

	text := normalizeWhitespace(doc.Find("body").Text())
	if text == "" {
		// Some fragments carry no body element.
		text = normalizeWhitespace(doc.Text())
	}
	if text == "" {
		return nil, ErrNoContent
	}

	return &Posting{Title: title, Text: text, URL: rawURL}, nil
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
