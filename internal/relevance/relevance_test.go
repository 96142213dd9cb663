package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

// cannedCompleter returns a fixed response or error for every prompt.
type cannedCompleter struct {
	response   string
	err        error
	lastPrompt string
}

func (c *cannedCompleter) Name() string { return "canned" }

func (c *cannedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.lastPrompt = prompt
	return c.response, c.err
}

func testLinks() []crawl.LinkRecord {
	return []crawl.LinkRecord{
		{URL: "https://a.test/", Text: "alpha"},
		{URL: "https://b.test/", Text: "beta"},
		{URL: "https://c.test/", Text: "gamma"},
	}
}

func TestShouldContinueDecodesDecision(t *testing.T) {
	llm := &cannedCompleter{response: `{"should_continue": false, "reason": "coverage complete", "confidence": 0.85}`}
	f := NewFilter(llm, zap.NewNop())

	dec, err := f.ShouldContinue(context.Background(), crawl.ContinueRequest{
		Query: "go concurrency", Depth: 2, MaxDepth: 3, PagesCollected: 12,
		RecentTitles: []string{"Go memory model"},
	})
	require.NoError(t, err)
	assert.False(t, dec.Continue)
	assert.Equal(t, "coverage complete", dec.Reason)
	assert.InDelta(t, 0.85, dec.Confidence, 1e-9)
	assert.Contains(t, llm.lastPrompt, "go concurrency")
	assert.Contains(t, llm.lastPrompt, "Go memory model")
}

func TestShouldContinuePropagatesProviderError(t *testing.T) {
	f := NewFilter(&cannedCompleter{err: errors.New("rate limited")}, zap.NewNop())
	_, err := f.ShouldContinue(context.Background(), crawl.ContinueRequest{Query: "q"})
	assert.Error(t, err)
}

func TestShouldContinueMalformedResponseIsError(t *testing.T) {
	f := NewFilter(&cannedCompleter{response: "I think you should keep going!"}, zap.NewNop())
	_, err := f.ShouldContinue(context.Background(), crawl.ContinueRequest{Query: "q"})
	assert.Error(t, err)
}

func TestFilterLinksPreservesInputOrder(t *testing.T) {
	llm := &cannedCompleter{response: `{"urls": ["https://c.test/", "https://a.test/"]}`}
	f := NewFilter(llm, zap.NewNop())

	out, err := f.FilterLinks(context.Background(), testLinks(), "docs only", "q")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "https://a.test/", out[0].URL)
	assert.Equal(t, "https://c.test/", out[1].URL)
}

func TestFilterLinksEmptyInput(t *testing.T) {
	f := NewFilter(&cannedCompleter{}, zap.NewNop())
	out, err := f.FilterLinks(context.Background(), nil, "c", "q")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRankLinksSortsDescending(t *testing.T) {
	llm := &cannedCompleter{response: `[
		{"url": "https://b.test/", "score": 0.4},
		{"url": "https://a.test/", "score": 0.9, "reason": "primary source"},
		{"url": "https://c.test/", "score": 0.7}
	]`}
	f := NewFilter(llm, zap.NewNop())

	ranked, err := f.RankLinks(context.Background(), "q", testLinks(), "")
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "https://a.test/", ranked[0].URL)
	assert.Equal(t, "https://c.test/", ranked[1].URL)
	assert.Equal(t, "https://b.test/", ranked[2].URL)
}

func TestRankLinksFencedResponse(t *testing.T) {
	llm := &cannedCompleter{response: "```json\n[{\"url\": \"https://a.test/\", \"score\": 1.0}]\n```"}
	f := NewFilter(llm, zap.NewNop())

	ranked, err := f.RankLinks(context.Background(), "q", testLinks(), "")
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "https://a.test/", ranked[0].URL)
}
