// Package crawl implements the live opportunity discovery crawler: it fetches
// configured listing sources, extracts opportunity records from their HTML,
// and reports per-source diagnostics.
package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is the per-source HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for listing fetches.
const DefaultUserAgent = "Mozilla/5.0 (compatible; PlacementHub/1.0)"

// FetchError represents an error while fetching one listing source.
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Fetcher retrieves the HTML of one listing page. The plain HTTP fetcher is
// the default; a browser-backed fetcher handles JavaScript-only sources.
type Fetcher interface {
	Fetch(ctx context.Context, urlStr string) (html string, err error)
}

// HTTPFetcher fetches listing pages over plain HTTP.
type HTTPFetcher struct {
	Timeout   time.Duration
	UserAgent string
}

// NewHTTPFetcher returns a fetcher with default timeout and user agent.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Timeout: DefaultTimeout, UserAgent: DefaultUserAgent}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &FetchError{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: f.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", &FetchError{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", &FetchError{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: urlStr, Message: "failed to read response body", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return string(body), nil
}
