// Package fetcher retrieves single URLs: a headless browser for web pages,
// a plain HTTP GET with format-specific extraction for documents (PDF,
// YAML, JSON, XML). All failure modes are captured into the returned
// record, never raised.
package fetcher

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seekerlab/deepcrawl/internal/extractor"
	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

// navigationOverhead is added on top of the per-page timeout to cover
// page setup and teardown around the navigation itself.
const navigationOverhead = 5 * time.Second

// docKind selects the extraction strategy for a URL.
type docKind int

const (
	kindHTML docKind = iota
	kindPDF
	kindYAML
	kindJSON
	kindXML
)

// classify picks a docKind from the URL path suffix. Anything
// unrecognized is treated as a regular web page.
func classify(rawURL string) docKind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return kindHTML
	}
	p := strings.ToLower(u.Path)
	switch {
	case strings.HasSuffix(p, ".pdf"):
		return kindPDF
	case strings.HasSuffix(p, ".yaml"), strings.HasSuffix(p, ".yml"):
		return kindYAML
	case strings.HasSuffix(p, ".json"):
		return kindJSON
	case strings.HasSuffix(p, ".xml"):
		return kindXML
	default:
		return kindHTML
	}
}

// Config holds configuration shared by both fetch paths.
type Config struct {
	PerPageTimeout time.Duration
	UserAgent      string
	Headless       bool
}

// Client implements crawl.Fetcher by dispatching on document kind.
type Client struct {
	browser *Browser
	docs    *DocumentFetcher
	extract *extractor.Extractor
	timeout time.Duration
	log     *zap.Logger
}

// NewClient launches the shared browser and prepares the document fetcher.
// A failure to acquire the browser is a hard error: without it no crawl
// can proceed.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.PerPageTimeout == 0 {
		cfg.PerPageTimeout = 15 * time.Second
	}

	browser, err := NewBrowser(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		browser: browser,
		docs:    NewDocumentFetcher(cfg.UserAgent, cfg.PerPageTimeout),
		extract: extractor.New(),
		timeout: cfg.PerPageTimeout,
		log:     log,
	}, nil
}

func (c *Client) Name() string { return "auto" }

// Fetch retrieves one URL at the given depth. It never fails: every error
// is classified into the record's Error field with empty content and links.
func (c *Client) Fetch(ctx context.Context, rawURL string, depth int) *crawl.PageRecord {
	start := time.Now()
	rec := &crawl.PageRecord{
		URL:            rawURL,
		Depth:          depth,
		RelevanceScore: crawl.DefaultRelevance,
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout+navigationOverhead)
	defer cancel()

	if classify(rawURL) == kindHTML {
		return c.fetchPage(ctx, rawURL, rec, start)
	}
	return c.fetchDocument(ctx, rawURL, rec, start)
}

func (c *Client) fetchPage(ctx context.Context, rawURL string, rec *crawl.PageRecord, start time.Time) *crawl.PageRecord {
	html, err := c.browser.FetchHTML(ctx, rawURL)
	fetched := time.Now()
	rec.FetchTimeMs = fetched.Sub(start).Milliseconds()
	if err != nil {
		return c.fail(rec, err)
	}

	res, err := c.extract.Extract(html, rawURL)
	if err != nil {
		return c.fail(rec, err)
	}
	rec.Title = res.Title
	rec.Content = res.Text
	rec.Links = res.Links
	rec.ProcessingTimeMs = time.Since(fetched).Milliseconds()
	return rec
}

func (c *Client) fetchDocument(ctx context.Context, rawURL string, rec *crawl.PageRecord, start time.Time) *crawl.PageRecord {
	body, err := c.docs.Download(ctx, rawURL)
	fetched := time.Now()
	rec.FetchTimeMs = fetched.Sub(start).Milliseconds()
	if err != nil {
		return c.fail(rec, err)
	}

	text, err := extractDocument(body, classify(rawURL))
	if err != nil {
		return c.fail(rec, err)
	}
	rec.Title = documentTitle(rawURL)
	rec.Content = extractor.Truncate(text, extractor.ContentCap)
	rec.ProcessingTimeMs = time.Since(fetched).Milliseconds()
	return rec
}

// fail converts err into a terminal error record.
func (c *Client) fail(rec *crawl.PageRecord, err error) *crawl.PageRecord {
	rec.Error = classifyError(err)
	rec.RelevanceScore = crawl.FailedRelevance
	rec.Content = ""
	rec.Links = nil
	c.log.Debug("fetch failed",
		zap.String("url", rec.URL),
		zap.String("class", rec.Error),
		zap.Error(err))
	return rec
}

// documentTitle falls back to the last path segment for non-HTML documents.
func documentTitle(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[len(segs)-1] == "" {
		return u.Host
	}
	return segs[len(segs)-1]
}

// Close releases the browser.
func (c *Client) Close() error {
	return c.browser.Close()
}
