// Package crawl defines the public data model and interfaces for the
// deep-research crawl engine. External tools can import this package to
// plug in custom fetchers, relevance filters, or search providers
// without forking the project.
package crawl

import (
	"context"
	"time"
)

// Relevance score defaults. Pages and links start at the neutral score
// until a filter assigns a real one; failed fetches are scored low so
// downstream ranking naturally sinks them.
const (
	DefaultRelevance = 0.5
	FailedRelevance  = 0.1
)

// ---------- Core Data Types ----------

// PageRecord is the result of fetching one URL. It is created by a Fetcher;
// only RelevanceScore changes afterwards, when the orchestrator re-scores an
// accepted page. A record with Error set carries no content and no links.
type PageRecord struct {
	URL              string       `json:"url"`
	Title            string       `json:"title"`
	Content          string       `json:"content"`
	Links            []LinkRecord `json:"links,omitempty"`
	Depth            int          `json:"depth"`
	RelevanceScore   float64      `json:"relevance_score"`
	FetchTimeMs      int64        `json:"fetch_time_ms"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
	Error            string       `json:"error,omitempty"`
}

// Failed reports whether the fetch that produced this record failed.
func (p *PageRecord) Failed() bool { return p.Error != "" }

// LinkRecord is one outbound link discovered on a page. URLs are absolute,
// http(s) only, fragment stripped, and unique within a page's link list.
type LinkRecord struct {
	URL            string  `json:"url"`
	Text           string  `json:"text"`
	Context        string  `json:"context,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Budget bounds one crawl session. Immutable for the duration of a crawl.
type Budget struct {
	MaxDepth               int
	MaxPagesPerDepth       int
	MaxConcurrentFetches   int
	PerPageTimeout         time.Duration
	LinkRelevanceThreshold float64
}

// SearchResult is one hit from an external search provider, used to seed
// the depth-0 page set.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// ---------- Relevance Filter Types ----------

// ContinueRequest carries the crawl context for a continuation decision.
type ContinueRequest struct {
	Query          string
	Depth          int
	MaxDepth       int
	PagesCollected int
	RecentTitles   []string
}

// ContinueDecision is the filter's answer to "should the crawl go deeper".
// The stop path is a regular return value, never an error.
type ContinueDecision struct {
	Continue   bool    `json:"should_continue"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// RankedLink is one scored entry from a link-ranking call.
type RankedLink struct {
	URL    string  `json:"url"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

// ---------- Event Types ----------

// EventType identifies the kind of crawl event.
type EventType int

const (
	EventCrawlStarted EventType = iota
	EventDepthStarted
	EventPageFetched
	EventPageError
	EventPageSkipped
	EventDepthDone
	EventCrawlFinished
)

// CrawlEvent is a real-time progress event emitted by the orchestrator.
type CrawlEvent struct {
	Type    EventType
	URL     string
	Depth   int
	Page    *PageRecord
	Message string
	Stats   *Stats
}

// Stats holds running counters for one crawl session.
type Stats struct {
	PagesFetched int           `json:"pages_fetched"`
	PagesErrored int           `json:"pages_errored"`
	PagesSkipped int           `json:"pages_skipped"`
	LinksFound   int           `json:"links_found"`
	Elapsed      time.Duration `json:"elapsed"`
}

// ---------- Interfaces ----------

// Fetcher retrieves a single URL. Fetch never fails: every failure mode is
// captured into the returned record's Error field. Implementations must
// honor the context and return within the configured per-page timeout.
type Fetcher interface {
	// Name returns a human-readable identifier for this fetcher.
	Name() string

	// Fetch retrieves the page at the given URL at the given crawl depth.
	Fetch(ctx context.Context, url string, depth int) *PageRecord

	// Close releases any resources held by the fetcher.
	Close() error
}

// RelevanceFilter is the AI collaborator consulted while crawling. Every
// method may fail; callers are expected to degrade to a local fallback
// rather than abort the crawl.
type RelevanceFilter interface {
	// ShouldContinue decides whether another depth level is worthwhile.
	ShouldContinue(ctx context.Context, req ContinueRequest) (ContinueDecision, error)

	// FilterLinks returns the order-preserving subset of links that meet
	// the quality criterion for the given query.
	FilterLinks(ctx context.Context, links []LinkRecord, criterion, query string) ([]LinkRecord, error)

	// RankLinks scores links for crawl priority, sorted descending by score.
	RankLinks(ctx context.Context, query string, links []LinkRecord, context string) ([]RankedLink, error)
}

// SearchProvider returns seed results for a query.
type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
