// Package extractor reduces raw HTML to the text and outbound links the
// crawl engine cares about.
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

const (
	// ContentCap is the maximum number of characters retained for any
	// page's extracted text.
	ContentCap = 15000

	// minRegionLen is the threshold a candidate content region must
	// exceed to be accepted as the page's primary content.
	minRegionLen = 200

	// maxFallbackParagraphs bounds the paragraph-concatenation fallback.
	maxFallbackParagraphs = 10

	// linkFieldCap limits anchor text and surrounding context per link.
	linkFieldCap = 200
)

// contentSelectors is a priority list tried in order; the first region
// whose text exceeds minRegionLen wins. Order is a tunable heuristic,
// not a guarantee.
var contentSelectors = []string{
	"main article",
	"article",
	".post-content",
	"[role=main]",
	"main",
	"#content",
	".content",
}

// strippedSelectors are removed from the tree before any extraction.
var strippedSelectors = []string{
	"script", "style", "noscript", "iframe", "svg",
	"nav", "header", "footer", "aside",
	"[class*='sidebar']", "[id*='sidebar']",
	"[class*='advert']", "[class*='banner']", "[class*='promo']",
	"[class*='comment']", "[id*='comment']",
	".ad", ".ads",
}

// Extractor turns raw HTML into plain text plus deduplicated outbound links.
type Extractor struct {
	contentCap int
}

// New creates an Extractor with the default content cap.
func New() *Extractor {
	return &Extractor{contentCap: ContentCap}
}

// Result is the output of one extraction pass.
type Result struct {
	Title       string
	Description string
	Text        string
	Links       []crawl.LinkRecord
}

// Extract parses html, strips non-content subtrees, locates the primary
// content region, and harvests outbound links resolved against baseURL.
func (e *Extractor) Extract(html, baseURL string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	title := collapse(doc.Find("title").First().Text())
	description := collapse(doc.Find(`meta[name="description"]`).AttrOr("content", ""))

	doc.Find(strings.Join(strippedSelectors, ", ")).Remove()

	var headings []string
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			headings = append(headings, t)
		}
	})

	primary := e.primaryContent(doc)

	var listItems []string
	doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		if t := collapse(s.Text()); t != "" {
			listItems = append(listItems, t)
		}
	})

	var blocks []string
	for _, b := range []string{title, description, strings.Join(headings, "\n"), primary, strings.Join(listItems, "\n")} {
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	text := Truncate(strings.Join(blocks, "\n\n"), e.contentCap)

	return &Result{
		Title:       title,
		Description: description,
		Text:        text,
		Links:       harvestLinks(doc, base),
	}, nil
}

// primaryContent tries the selector priority list, then the first N
// paragraphs, then the whole body.
func (e *Extractor) primaryContent(doc *goquery.Document) string {
	for _, sel := range contentSelectors {
		region := doc.Find(sel).First()
		if region.Length() == 0 {
			continue
		}
		if t := collapse(region.Text()); len(t) >= minRegionLen {
			return t
		}
	}

	var paras []string
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if t := collapse(s.Text()); t != "" {
			paras = append(paras, t)
		}
		return len(paras) < maxFallbackParagraphs
	})
	if joined := strings.Join(paras, "\n"); len(joined) >= minRegionLen {
		return joined
	}

	return collapse(doc.Find("body").Text())
}

// Truncate cuts s to at most max characters. Applying it twice with the
// same cap is a no-op.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// collapse trims each line, squeezes runs of whitespace, and drops blank
// lines.
func collapse(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	return strings.Join(lines, "\n")
}
