// Package output renders a finished crawl session to disk.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

// excerptLen is how much page text a Markdown report shows per page.
const excerptLen = 500

// Report is the final aggregate of one crawl session.
type Report struct {
	SessionID string              `json:"session_id"`
	Query     string              `json:"query"`
	StartedAt time.Time           `json:"started_at"`
	Duration  time.Duration       `json:"duration"`
	Stats     crawl.Stats         `json:"stats"`
	Pages     []*crawl.PageRecord `json:"pages"`
}

// NewReport assembles a report with a fresh session id.
func NewReport(query string, pages []*crawl.PageRecord, stats crawl.Stats, startedAt time.Time) *Report {
	return &Report{
		SessionID: uuid.NewString(),
		Query:     query,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Stats:     stats,
		Pages:     pages,
	}
}

// MarkdownWriter renders a report as a Markdown research document.
type MarkdownWriter struct {
	path string
}

// NewMarkdownWriter writes to path on Write.
func NewMarkdownWriter(path string) *MarkdownWriter {
	return &MarkdownWriter{path: path}
}

func (w *MarkdownWriter) Name() string { return "markdown" }

func (w *MarkdownWriter) Write(r *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Research crawl: %s\n\n", r.Query)
	fmt.Fprintf(&b, "- Session: `%s`\n", r.SessionID)
	fmt.Fprintf(&b, "- Started: %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "- Pages collected: %d\n", len(r.Pages))
	fmt.Fprintf(&b, "- Links found: %d\n", r.Stats.LinksFound)
	fmt.Fprintf(&b, "- Fetch errors: %d\n", r.Stats.PagesErrored)
	fmt.Fprintf(&b, "- Pages skipped: %d\n\n", r.Stats.PagesSkipped)

	byDepth := make(map[int][]*crawl.PageRecord)
	for _, p := range r.Pages {
		byDepth[p.Depth] = append(byDepth[p.Depth], p)
	}
	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	for _, d := range depths {
		fmt.Fprintf(&b, "## Depth %d\n\n", d)
		for _, p := range byDepth[d] {
			title := p.Title
			if title == "" {
				title = p.URL
			}
			fmt.Fprintf(&b, "### %s\n\n", title)
			fmt.Fprintf(&b, "<%s>\n\n", p.URL)
			fmt.Fprintf(&b, "Relevance %.2f, fetched in %dms, %d outbound links.\n\n",
				p.RelevanceScore, p.FetchTimeMs, len(p.Links))
			if excerpt := excerptOf(p.Content); excerpt != "" {
				fmt.Fprintf(&b, "> %s\n\n", excerpt)
			}
		}
	}

	return os.WriteFile(w.path, []byte(b.String()), 0o644)
}

// JSONWriter dumps the full report as indented JSON.
type JSONWriter struct {
	path string
}

// NewJSONWriter writes to path on Write.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

func (w *JSONWriter) Name() string { return "json" }

func (w *JSONWriter) Write(r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return os.WriteFile(w.path, data, 0o644)
}

func excerptOf(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= excerptLen {
		return s
	}
	return string(r[:excerptLen]) + "…"
}
