// Package webclient provides pluggable HTTP fetch backends behind the
// interfaces.WebClient contract. The nethttp backend covers ordinary
// postings; the chromedp backend renders JS-heavy job boards in a headless
// browser before handing back HTML.
package webclient

import (
	"context"

	"github.com/verijob/verijob/internal/interfaces"
	"github.com/verijob/verijob/internal/model"
)

// WebClient re-exports the contract for packages that already import
// webclient and don't need the rest of interfaces.
type WebClient = interfaces.WebClient

var _ WebClient = (*NetHTTPClient)(nil)
var _ WebClient = (*ChromeDPClient)(nil)

// Get runs a one-off GET through any WebClient.
func Get(ctx context.Context, wc WebClient, url string) (*model.Response, error) {
	return wc.Do(ctx, &model.Request{Method: "GET", URL: url})
}
