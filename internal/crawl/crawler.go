package crawl

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/karthik/placementhub/internal/types"
)

// ErrNoSources is returned when a crawl is requested with no configured
// listing sources.
var ErrNoSources = errors.New("no listing sources configured")

// matchMethodSkill tags opportunities whose tags overlap the identity's
// skills; untagged matches fall back to the department heuristic.
const (
	matchMethodSkill      = "skill-overlap"
	matchMethodDepartment = "department"
)

// SourceCrawler is the in-tree implementation of the discovery crawler
// collaborator: it scrapes the configured listing sources directly.
type SourceCrawler struct {
	sources []string
	fetcher Fetcher
	browser Fetcher
}

// NewSourceCrawler creates a crawler over the given listing source URLs.
func NewSourceCrawler(sources []string, fetcher Fetcher) *SourceCrawler {
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}
	return &SourceCrawler{sources: sources, fetcher: fetcher}
}

// WithBrowserFallback enables headless rendering of sources whose plain HTTP
// response looks like an unrendered SPA shell.
func (c *SourceCrawler) WithBrowserFallback(browser Fetcher) *SourceCrawler {
	c.browser = browser
	return c
}

// fetch retrieves one source, rendering it in the browser when the plain
// response looks like an SPA shell. A render failure falls back to the HTTP
// content rather than failing the source.
func (c *SourceCrawler) fetch(ctx context.Context, src string) (string, error) {
	html, err := c.fetcher.Fetch(ctx, src)
	if err != nil {
		return "", err
	}
	if c.browser != nil && ShouldUseBrowser(html) {
		if rendered, rerr := c.browser.Fetch(ctx, src); rerr == nil {
			return rendered, nil
		}
	}
	return html, nil
}

// Discover fetches every configured source concurrently and aggregates their
// listings. A failing source contributes a diagnostic, not a crawl failure;
// the crawl as a whole fails only when every source fails.
func (c *SourceCrawler) Discover(ctx context.Context, identity types.Identity) ([]types.Opportunity, *types.CrawlMeta, error) {
	if len(c.sources) == 0 {
		return nil, nil, ErrNoSources
	}

	diags := make([]types.SourceDiag, len(c.sources))
	results := make([][]types.Opportunity, len(c.sources))

	g, gCtx := errgroup.WithContext(ctx)
	for i, src := range c.sources {
		g.Go(func() error {
			start := time.Now()
			diag := types.SourceDiag{URL: src}

			html, err := c.fetch(gCtx, src)
			if err == nil {
				var opps []types.Opportunity
				opps, err = ExtractListings(html, src)
				if err == nil {
					results[i] = opps
					diag.Count = len(opps)
				}
			}
			if err != nil {
				diag.Err = err.Error()
			}
			diag.Duration = time.Since(start)
			diags[i] = diag
			return nil
		})
	}
	// Source errors are carried in diagnostics; the group never fails.
	_ = g.Wait()

	var all []types.Opportunity
	failed := 0
	for i := range c.sources {
		if diags[i].Err != "" {
			failed++
		}
		all = append(all, results[i]...)
	}
	if failed == len(c.sources) {
		return nil, nil, errors.New("all listing sources failed: " + diags[0].Err)
	}

	tagMatches(all, identity)

	meta := &types.CrawlMeta{
		GeneratedAt: time.Now(),
		Total:       len(all),
		Sources:     diags,
	}
	return all, meta, nil
}

// tagMatches stamps a match method on each opportunity based on the
// identity's profile, mirroring how the portal's extractor annotates its
// results.
func tagMatches(opps []types.Opportunity, identity types.Identity) {
	skills := make(map[string]bool, len(identity.Skills))
	for _, s := range identity.Skills {
		skills[strings.ToLower(strings.TrimSpace(s))] = true
	}
	for i := range opps {
		matched := false
		for _, tag := range opps[i].Tags {
			if skills[strings.ToLower(strings.TrimSpace(tag))] {
				matched = true
				break
			}
		}
		if matched {
			opps[i].MatchMethod = matchMethodSkill
		} else {
			opps[i].MatchMethod = matchMethodDepartment
		}
	}
	// Skill-matched opportunities surface first; order within each band is
	// preserved.
	sort.SliceStable(opps, func(a, b int) bool {
		return opps[a].MatchMethod == matchMethodSkill && opps[b].MatchMethod != matchMethodSkill
	})
}
