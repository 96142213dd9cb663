// Package relevance implements the AI collaborator consulted during a
// crawl: continuation decisions, link quality filtering, and link
// ranking, backed by an LLM completion endpoint. Every method returns a
// typed result or an error; callers degrade to local fallbacks on error.
package relevance

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

// Completer is a minimal LLM completion endpoint.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Filter implements crawl.RelevanceFilter on top of a Completer.
type Filter struct {
	llm Completer
	log *zap.Logger
}

// NewFilter wraps an LLM completion endpoint as a relevance filter.
func NewFilter(llm Completer, log *zap.Logger) *Filter {
	return &Filter{llm: llm, log: log}
}

// ShouldContinue asks whether another crawl depth is worthwhile. The
// stop answer is a regular decision value, never an error.
func (f *Filter) ShouldContinue(ctx context.Context, req crawl.ContinueRequest) (crawl.ContinueDecision, error) {
	raw, err := f.llm.Complete(ctx, continuePrompt(req))
	if err != nil {
		return crawl.ContinueDecision{}, fmt.Errorf("continuation check: %w", err)
	}

	var dec crawl.ContinueDecision
	if err := decodeJSON(raw, &dec); err != nil {
		return crawl.ContinueDecision{}, err
	}
	f.log.Debug("continuation decision",
		zap.Bool("continue", dec.Continue),
		zap.String("reason", dec.Reason))
	return dec, nil
}

// FilterLinks returns the order-preserving subset of links that meet the
// quality criterion.
func (f *Filter) FilterLinks(ctx context.Context, links []crawl.LinkRecord, criterion, query string) ([]crawl.LinkRecord, error) {
	if len(links) == 0 {
		return nil, nil
	}

	raw, err := f.llm.Complete(ctx, filterPrompt(links, criterion, query))
	if err != nil {
		return nil, fmt.Errorf("quality filter: %w", err)
	}

	var resp struct {
		URLs []string `json:"urls"`
	}
	if err := decodeJSON(raw, &resp); err != nil {
		return nil, err
	}

	keep := make(map[string]struct{}, len(resp.URLs))
	for _, u := range resp.URLs {
		keep[u] = struct{}{}
	}

	var out []crawl.LinkRecord
	for _, l := range links {
		if _, ok := keep[l.URL]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// RankLinks scores links for crawl priority, sorted descending by score.
func (f *Filter) RankLinks(ctx context.Context, query string, links []crawl.LinkRecord, extra string) ([]crawl.RankedLink, error) {
	if len(links) == 0 {
		return nil, nil
	}

	raw, err := f.llm.Complete(ctx, rankPrompt(query, links, extra))
	if err != nil {
		return nil, fmt.Errorf("link ranking: %w", err)
	}

	var ranked []crawl.RankedLink
	if err := decodeJSON(raw, &ranked); err != nil {
		return nil, err
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

func continuePrompt(req crawl.ContinueRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are assisting a research crawl for the query: %q\n", req.Query)
	fmt.Fprintf(&b, "Depth %d of %d, %d pages collected so far.\n", req.Depth, req.MaxDepth, req.PagesCollected)
	if len(req.RecentTitles) > 0 {
		b.WriteString("Recently collected page titles:\n")
		for _, t := range req.RecentTitles {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	b.WriteString("\nShould the crawl go one level deeper? Respond with JSON only:\n")
	b.WriteString(`{"should_continue": true|false, "reason": "...", "confidence": 0.0-1.0}`)
	return b.String()
}

func filterPrompt(links []crawl.LinkRecord, criterion, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research query: %q\nQuality criterion: %s\n\nCandidate links:\n", query, criterion)
	for _, l := range links {
		fmt.Fprintf(&b, "- %s (%s)\n", l.URL, l.Text)
	}
	b.WriteString("\nReturn only the URLs worth crawling, as JSON:\n")
	b.WriteString(`{"urls": ["..."]}`)
	return b.String()
}

func rankPrompt(query string, links []crawl.LinkRecord, extra string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research query: %q\n", query)
	if extra != "" {
		fmt.Fprintf(&b, "Context: %s\n", extra)
	}
	b.WriteString("\nScore each link 0.0-1.0 for how useful it likely is to the query:\n")
	for _, l := range links {
		fmt.Fprintf(&b, "- %s | %s | %s\n", l.URL, l.Text, l.Context)
	}
	b.WriteString("\nRespond with a JSON array only:\n")
	b.WriteString(`[{"url": "...", "score": 0.0, "reason": "..."}]`)
	return b.String()
}
