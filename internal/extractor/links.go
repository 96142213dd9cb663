package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

// harvestLinks walks every anchor with a non-empty href and visible text,
// resolves it against base, and returns http(s) links deduplicated by
// absolute URL. First occurrence wins; document order is preserved.
func harvestLinks(doc *goquery.Document, base *url.URL) []crawl.LinkRecord {
	seen := make(map[string]bool)
	var links []crawl.LinkRecord

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" ||
			strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") {
			return
		}

		text := collapse(s.Text())
		if text == "" {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		abs.Fragment = ""

		u := abs.String()
		if seen[u] {
			return
		}
		seen[u] = true

		links = append(links, crawl.LinkRecord{
			URL:            u,
			Text:           Truncate(text, linkFieldCap),
			Context:        Truncate(collapse(s.Parent().Text()), linkFieldCap),
			RelevanceScore: crawl.DefaultRelevance,
		})
	})

	return links
}
