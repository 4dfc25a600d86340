package crawl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted HTML length to consider a plain
// HTTP fetch usable. Shorter pages are likely JavaScript-rendered shells.
const MinContentLength = 500

// ShouldUseBrowser reports whether a fetched page looks like an unrendered
// SPA shell that needs browser rendering.
func ShouldUseBrowser(html string) bool {
	return len(strings.TrimSpace(html)) < MinContentLength
}

// BrowserFetcher renders listing pages in a headless browser before
// extraction. Requires Chrome/Chromium on the system.
type BrowserFetcher struct {
	Timeout time.Duration
}

// NewBrowserFetcher returns a browser fetcher with the default timeout.
func NewBrowserFetcher() *BrowserFetcher {
	return &BrowserFetcher{Timeout: DefaultTimeout}
}

// Fetch implements Fetcher.
func (f *BrowserFetcher) Fetch(ctx context.Context, urlStr string) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, f.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body"),
		// Give client-side rendering a moment to settle.
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed for %s: %w", urlStr, err)
	}
	return html, nil
}
