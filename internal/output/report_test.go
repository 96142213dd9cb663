package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

func sampleReport() *Report {
	pages := []*crawl.PageRecord{
		{URL: "https://a.test/", Title: "Seed page", Content: "seed content", Depth: 0, RelevanceScore: 0.8},
		{URL: "https://b.test/", Title: "Deep page", Content: "deep content", Depth: 1, RelevanceScore: 0.6},
	}
	return NewReport("test query", pages, crawl.Stats{PagesFetched: 2, LinksFound: 5}, time.Now())
}

func TestMarkdownWriter(t *testing.T) {
	r := sampleReport()
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, NewMarkdownWriter(path).Write(r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "# Research crawl: test query")
	assert.Contains(t, text, "## Depth 0")
	assert.Contains(t, text, "## Depth 1")
	assert.Contains(t, text, "https://a.test/")
	assert.Contains(t, text, "Seed page")
}

func TestJSONWriterRoundTrips(t *testing.T) {
	r := sampleReport()
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, NewJSONWriter(path).Write(r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.SessionID, decoded.SessionID)
	assert.Equal(t, "test query", decoded.Query)
	require.Len(t, decoded.Pages, 2)
	assert.Equal(t, "https://a.test/", decoded.Pages[0].URL)
}

func TestExcerptCapped(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	got := excerptOf(string(long))
	assert.LessOrEqual(t, len([]rune(got)), excerptLen+1)
}
