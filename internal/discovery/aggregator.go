// Package discovery requests live opportunity crawls and merges their results
// with the static catalog for display and application tracking.
package discovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/karthik/placementhub/internal/types"
)

// BoostedMarker is matched (case-insensitive substring) against an
// opportunity's MatchMethod to detect ranking-enhanced results.
const BoostedMarker = "groq"

// ErrDiscoveryInFlight is returned when a discovery run is requested while
// one is already in progress. Triggers are dropped, not queued.
var ErrDiscoveryInFlight = errors.New("discovery already in flight")

// Crawler is the external live-discovery collaborator. Its internal
// implementation is opaque to the aggregator; it may fail.
type Crawler interface {
	Discover(ctx context.Context, identity types.Identity) ([]types.Opportunity, *types.CrawlMeta, error)
}

// Aggregator owns the discovered opportunity set and its crawl metadata.
// A nil Meta with an empty set means "never run"; a non-nil Meta with an
// empty set means "ran and found nothing".
type Aggregator struct {
	mu         sync.Mutex
	crawler    Crawler
	inFlight   bool
	gen        uint64
	discovered []types.Opportunity
	meta       *types.CrawlMeta
}

// NewAggregator creates an aggregator delegating to the given crawler.
func NewAggregator(crawler Crawler) *Aggregator {
	return &Aggregator{crawler: crawler}
}

// InFlight reports whether a discovery run is currently in progress.
// Callers use it to suppress re-entrant triggers.
func (a *Aggregator) InFlight() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

// Discover runs one live crawl for the identity and commits the result.
// On crawler failure the discovered set is reset to empty and the metadata
// to absent; partial state is never kept. A concurrent call returns
// ErrDiscoveryInFlight without starting a second crawl.
func (a *Aggregator) Discover(ctx context.Context, identity types.Identity) ([]types.Opportunity, *types.CrawlMeta, error) {
	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return nil, nil, ErrDiscoveryInFlight
	}
	a.inFlight = true
	gen := a.gen
	a.mu.Unlock()

	opps, meta, err := a.crawler.Discover(ctx, identity)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight = false
	if a.gen != gen {
		// The run was superseded by a Reset while in flight; its results
		// belong to the previous identity and are not committed.
		return opps, meta, err
	}
	if err != nil {
		a.discovered = nil
		a.meta = nil
		return nil, nil, err
	}
	if meta == nil {
		// A successful crawl always has metadata, even an empty run.
		meta = &types.CrawlMeta{GeneratedAt: time.Now(), Total: len(opps)}
	}
	a.discovered = opps
	a.meta = meta
	return opps, meta, nil
}

// Results returns the current discovered set and metadata.
func (a *Aggregator) Results() ([]types.Opportunity, *types.CrawlMeta) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.discovered, a.meta
}

// Reset discards discovered opportunities and metadata and supersedes any
// run still in flight. Called whenever the signed-in identity changes:
// discovery results are scoped to that identity.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	a.discovered = nil
	a.meta = nil
}

// MergedView concatenates static then discovered opportunities, preserving
// each input's internal order. It never deduplicates: duplicates co-exist in
// the merged sequence, and liveness tagging (LiveIDs) is what distinguishes
// the discovered copy.
func MergedView(staticSet, discoveredSet []types.Opportunity) []types.Opportunity {
	merged := make([]types.Opportunity, 0, len(staticSet)+len(discoveredSet))
	merged = append(merged, staticSet...)
	merged = append(merged, discoveredSet...)
	return merged
}

// LiveIDs returns the set of opportunity IDs classified as live. An ID in
// the discovered set is live even when the same ID also exists in the static
// catalog; the discovered copy takes precedence for tagging.
func LiveIDs(discoveredSet []types.Opportunity) map[string]bool {
	live := make(map[string]bool, len(discoveredSet))
	for _, o := range discoveredSet {
		live[o.ID] = true
	}
	return live
}

// BoostedCount counts discovered opportunities whose match method indicates
// ranking enhancement. Display statistic only.
func BoostedCount(discoveredSet []types.Opportunity) int {
	n := 0
	for _, o := range discoveredSet {
		if strings.Contains(strings.ToLower(o.MatchMethod), BoostedMarker) {
			n++
		}
	}
	return n
}
