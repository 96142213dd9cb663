package crawler

import (
	"time"

	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

// Options configures one crawl session.
type Options struct {
	Budget crawl.Budget

	// MinContentLen excludes successfully fetched pages whose extracted
	// text is too short to be useful.
	MinContentLen int

	// EnableStopCheck lets the relevance filter end the crawl before the
	// depth budget is exhausted. Only consulted for depth > 1.
	EnableStopCheck bool

	// EnableRanking orders the frontier by filter-assigned scores instead
	// of discovery order.
	EnableRanking bool

	// QualityCriterion, when non-empty, prunes the frontier through the
	// relevance filter before ranking.
	QualityCriterion string

	// LinksPerFilterCall caps how many candidates go into a single
	// quality-filter call.
	LinksPerFilterCall int
}

// DefaultOptions returns a sensible default configuration.
func DefaultOptions() Options {
	return Options{
		Budget: crawl.Budget{
			MaxDepth:               2,
			MaxPagesPerDepth:       10,
			MaxConcurrentFetches:   5,
			PerPageTimeout:         15 * time.Second,
			LinkRelevanceThreshold: 0.4,
		},
		MinContentLen:      100,
		EnableStopCheck:    true,
		EnableRanking:      true,
		LinksPerFilterCall: 20,
	}
}
