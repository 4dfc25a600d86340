package types

import "time"

// Opportunity is a single internship/placement listing. Two populations
// exist: the static pre-loaded catalog and the set produced by a live
// discovery crawl. An opportunity's identity is its ID.
type Opportunity struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Type        string   `json:"type"`
	Tags        []string `json:"tags,omitempty"`
	SourceURL   string   `json:"sourceUrl,omitempty"`
	MatchMethod string   `json:"matchMethod,omitempty"`
}

// SourceDiag records the outcome of crawling one listing source.
type SourceDiag struct {
	URL      string        `json:"url"`
	Count    int           `json:"count"`
	Duration time.Duration `json:"duration"`
	Err      string        `json:"err,omitempty"`
}

// CrawlMeta describes the outcome of one discovery run. The orchestration
// core stores and displays it but does not interpret it beyond that.
type CrawlMeta struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Total       int          `json:"total"`
	Sources     []SourceDiag `json:"sources,omitempty"`
}
