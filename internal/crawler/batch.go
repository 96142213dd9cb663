package crawler

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

// fetchBatch retrieves urls concurrently with at most
// Budget.MaxConcurrentFetches fetches in flight. Every input URL yields
// exactly one record: failures become error records, never lost results.
// The call returns only when all fetches have completed.
func (o *Orchestrator) fetchBatch(ctx context.Context, urls []string, depth int) []*crawl.PageRecord {
	if len(urls) == 0 {
		return nil
	}

	limit := o.opts.Budget.MaxConcurrentFetches
	if limit <= 0 {
		limit = 1
	}
	sem := semaphore.NewWeighted(int64(limit))

	results := make([]*crawl.PageRecord, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			results[i] = o.fetchOne(ctx, sem, u, depth)
		}(i, u)
	}
	wg.Wait()

	return results
}

// fetchOne runs a single gated fetch. A panicking or misbehaving fetcher
// is converted to an error record so one bad URL never takes down the
// batch.
func (o *Orchestrator) fetchOne(ctx context.Context, sem *semaphore.Weighted, u string, depth int) (rec *crawl.PageRecord) {
	defer func() {
		if r := recover(); r != nil {
			rec = errorRecord(u, depth, fmt.Sprintf("panic: %v", r))
		}
		if rec == nil {
			rec = errorRecord(u, depth, "unknown")
		}
	}()

	if err := sem.Acquire(ctx, 1); err != nil {
		return errorRecord(u, depth, "cancelled")
	}
	defer sem.Release(1)

	return o.fetcher.Fetch(ctx, u, depth)
}

func errorRecord(u string, depth int, class string) *crawl.PageRecord {
	return &crawl.PageRecord{
		URL:            u,
		Depth:          depth,
		Error:          class,
		RelevanceScore: crawl.FailedRelevance,
	}
}
