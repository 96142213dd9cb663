// Package crawler drives a bounded-depth breadth-first expansion over the
// web graph: fetch a level, harvest its links, prune and rank them with
// the relevance filter, fetch the next level. Depth levels are strictly
// sequential; fetches within a level are concurrent up to the budget.
package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seekerlab/deepcrawl/internal/relevance"
	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

// ErrNoSeeds is returned when there are no depth-0 pages to expand from.
// It is the only hard failure a crawl can produce.
var ErrNoSeeds = errors.New("no seed pages to expand from")

// maxTitlesForStopCheck caps the page-title context sent with a
// continuation check.
const maxTitlesForStopCheck = 10

// Orchestrator owns one crawl session: the visited set, the running
// stats, and the event stream. It is not safe for concurrent Run calls.
type Orchestrator struct {
	fetcher crawl.Fetcher
	filter  crawl.RelevanceFilter // nil disables all AI assistance
	opts    Options
	log     *zap.Logger

	// visited is mutated only by the single-threaded selection logic,
	// never by the concurrent fetch workers.
	visited map[string]struct{}

	stats   crawl.Stats
	statsMu sync.Mutex
	start   time.Time

	events chan crawl.CrawlEvent
}

// New creates an Orchestrator. filter may be nil to crawl without AI
// assistance.
func New(fetcher crawl.Fetcher, filter crawl.RelevanceFilter, opts Options, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		filter:  filter,
		opts:    opts,
		log:     log,
		visited: make(map[string]struct{}),
		events:  make(chan crawl.CrawlEvent, 256),
	}
}

// Events returns the progress event channel. It is closed when Run
// finishes.
func (o *Orchestrator) Events() <-chan crawl.CrawlEvent {
	return o.events
}

// Stats returns a snapshot of the running counters.
func (o *Orchestrator) Stats() crawl.Stats {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()
	return o.stats
}

// Seed fetches urls as depth-0 pages through the concurrency gate,
// marking them visited first. Failed fetches and too-short pages are
// counted but not returned.
func (o *Orchestrator) Seed(ctx context.Context, urls []string) []*crawl.PageRecord {
	if o.start.IsZero() {
		o.start = time.Now()
	}

	selected := o.markUnvisited(urls)
	var seeds []*crawl.PageRecord
	for _, rec := range o.fetchBatch(ctx, selected, 0) {
		o.record(rec)
		if rec.Failed() {
			continue
		}
		if len(rec.Content) < o.opts.MinContentLen {
			o.skip(rec)
			continue
		}
		seeds = append(seeds, rec)
	}
	return seeds
}

// Run expands seeds level by level until the depth budget is exhausted,
// the frontier empties, or the filter says stop. Whatever accumulated
// before an early stop is still returned; a cancelled context ends the
// crawl cooperatively with partial results.
func (o *Orchestrator) Run(ctx context.Context, query string, seeds []*crawl.PageRecord) ([]*crawl.PageRecord, error) {
	defer close(o.events)

	if o.start.IsZero() {
		o.start = time.Now()
	}
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}

	o.emit(crawl.CrawlEvent{Type: crawl.EventCrawlStarted, Message: query})

	for _, s := range seeds {
		o.visited[s.URL] = struct{}{}
		s.RelevanceScore = relevance.HeuristicScore(query, s.Title+" "+s.Content)
	}

	pages := make([]*crawl.PageRecord, 0, len(seeds))
	pages = append(pages, seeds...)
	level := seeds

	for depth := 1; depth <= o.opts.Budget.MaxDepth; depth++ {
		if ctx.Err() != nil {
			o.log.Info("crawl cancelled, returning partial results",
				zap.Int("depth", depth), zap.Int("pages", len(pages)))
			break
		}

		frontier := o.frontier(level)
		o.emit(crawl.CrawlEvent{Type: crawl.EventDepthStarted, Depth: depth})
		o.log.Debug("expanding depth",
			zap.Int("depth", depth), zap.Int("frontier", len(frontier)))

		if len(frontier) == 0 {
			break
		}
		if !o.shouldContinue(ctx, query, depth, len(pages), level) {
			break
		}

		frontier = o.qualityFilter(ctx, frontier, query)
		if len(frontier) == 0 {
			break
		}

		selected := o.markUnvisited(o.rankAndSelect(ctx, query, frontier))
		if len(selected) == 0 {
			break
		}

		var kept []*crawl.PageRecord
		for _, rec := range o.fetchBatch(ctx, selected, depth) {
			o.record(rec)
			if rec.Failed() {
				continue
			}
			if len(rec.Content) < o.opts.MinContentLen {
				o.skip(rec)
				continue
			}
			rec.RelevanceScore = relevance.HeuristicScore(query, rec.Title+" "+rec.Content)
			kept = append(kept, rec)
		}

		pages = append(pages, kept...)
		o.emit(crawl.CrawlEvent{Type: crawl.EventDepthDone, Depth: depth, Stats: o.snapshot()})
		level = kept
	}

	o.emit(crawl.CrawlEvent{Type: crawl.EventCrawlFinished, Stats: o.snapshot()})
	return pages, nil
}

// frontier collects the unvisited link URLs from the previous level, in
// discovery order, deduplicated within the level.
func (o *Orchestrator) frontier(level []*crawl.PageRecord) []crawl.LinkRecord {
	seen := make(map[string]struct{})
	var out []crawl.LinkRecord
	for _, p := range level {
		for _, l := range p.Links {
			if _, ok := o.visited[l.URL]; ok {
				continue
			}
			if _, ok := seen[l.URL]; ok {
				continue
			}
			seen[l.URL] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}

// shouldContinue runs the optional AI continuation check. A filter
// failure degrades to continuing on budget alone.
func (o *Orchestrator) shouldContinue(ctx context.Context, query string, depth, collected int, level []*crawl.PageRecord) bool {
	if o.filter == nil || !o.opts.EnableStopCheck || depth <= 1 {
		return true
	}

	titles := make([]string, 0, maxTitlesForStopCheck)
	for _, p := range level {
		if p.Title == "" {
			continue
		}
		titles = append(titles, p.Title)
		if len(titles) == maxTitlesForStopCheck {
			break
		}
	}

	dec, err := o.filter.ShouldContinue(ctx, crawl.ContinueRequest{
		Query:          query,
		Depth:          depth,
		MaxDepth:       o.opts.Budget.MaxDepth,
		PagesCollected: collected,
		RecentTitles:   titles,
	})
	if err != nil {
		o.log.Warn("continuation check failed, continuing on budget", zap.Error(err))
		return true
	}
	if !dec.Continue {
		o.log.Info("filter ended crawl early",
			zap.String("reason", dec.Reason),
			zap.Float64("confidence", dec.Confidence))
	}
	return dec.Continue
}

// qualityFilter prunes the frontier through the relevance filter in
// bounded chunks. A failed call keeps its chunk untouched.
func (o *Orchestrator) qualityFilter(ctx context.Context, frontier []crawl.LinkRecord, query string) []crawl.LinkRecord {
	if o.filter == nil || o.opts.QualityCriterion == "" {
		return frontier
	}

	chunk := o.opts.LinksPerFilterCall
	if chunk <= 0 {
		chunk = 20
	}

	var out []crawl.LinkRecord
	for lo := 0; lo < len(frontier); lo += chunk {
		hi := lo + chunk
		if hi > len(frontier) {
			hi = len(frontier)
		}
		part := frontier[lo:hi]

		filtered, err := o.filter.FilterLinks(ctx, part, o.opts.QualityCriterion, query)
		if err != nil {
			o.log.Warn("quality filter failed, keeping links", zap.Error(err))
			out = append(out, part...)
			continue
		}
		out = append(out, filtered...)
	}
	return out
}

// rankAndSelect orders the frontier (by filter score when ranking is
// enabled, discovery order otherwise) and truncates it to the per-depth
// page budget. A failed ranking degrades to discovery order.
func (o *Orchestrator) rankAndSelect(ctx context.Context, query string, frontier []crawl.LinkRecord) []string {
	budget := o.opts.Budget.MaxPagesPerDepth
	if budget <= 0 || budget > len(frontier) {
		budget = len(frontier)
	}

	if o.filter != nil && o.opts.EnableRanking {
		ranked, err := o.filter.RankLinks(ctx, query, frontier, "")
		if err == nil {
			offered := make(map[string]struct{}, len(frontier))
			for _, l := range frontier {
				offered[l.URL] = struct{}{}
			}

			urls := make([]string, 0, budget)
			for _, r := range ranked {
				if _, ok := offered[r.URL]; !ok {
					continue
				}
				if r.Score < o.opts.Budget.LinkRelevanceThreshold {
					continue
				}
				urls = append(urls, r.URL)
				if len(urls) == budget {
					break
				}
			}
			return urls
		}
		o.log.Warn("ranking failed, using discovery order", zap.Error(err))
	}

	urls := make([]string, 0, budget)
	for _, l := range frontier[:budget] {
		urls = append(urls, l.URL)
	}
	return urls
}

// markUnvisited records urls in the visited set, returning the ones that
// were not already present.
func (o *Orchestrator) markUnvisited(urls []string) []string {
	var out []string
	for _, u := range urls {
		if _, ok := o.visited[u]; ok {
			continue
		}
		o.visited[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func (o *Orchestrator) record(rec *crawl.PageRecord) {
	o.statsMu.Lock()
	if rec.Failed() {
		o.stats.PagesErrored++
	} else {
		o.stats.PagesFetched++
		o.stats.LinksFound += len(rec.Links)
	}
	o.stats.Elapsed = time.Since(o.start)
	o.statsMu.Unlock()

	typ := crawl.EventPageFetched
	if rec.Failed() {
		typ = crawl.EventPageError
	}
	o.emit(crawl.CrawlEvent{Type: typ, URL: rec.URL, Depth: rec.Depth, Page: rec, Stats: o.snapshot()})
}

func (o *Orchestrator) skip(rec *crawl.PageRecord) {
	o.statsMu.Lock()
	o.stats.PagesSkipped++
	o.statsMu.Unlock()

	o.emit(crawl.CrawlEvent{
		Type: crawl.EventPageSkipped, URL: rec.URL, Depth: rec.Depth,
		Message: "content below minimum length",
	})
}

func (o *Orchestrator) snapshot() *crawl.Stats {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()
	s := o.stats
	return &s
}

// emit sends an event without blocking; a slow consumer drops events
// rather than stalling the crawl.
func (o *Orchestrator) emit(event crawl.CrawlEvent) {
	select {
	case o.events <- event:
	default:
	}
}
