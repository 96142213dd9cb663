package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarvestLinksDedupAndNormalize(t *testing.T) {
	html := `<html><body><main>
		<p>intro <a href="/a">first</a> and <a href="/a#section">same page</a></p>
		<p><a href="https://other.com/b">external</a></p>
		<p><a href="mailto:x@example.com">mail</a>
		   <a href="javascript:void(0)">js</a>
		   <a href="tel:+123">tel</a>
		   <a href="#top">fragment only</a>
		   <a href="ftp://example.com/f">ftp</a>
		   <a href="/empty"></a></p>
	</main></body></html>`

	res := extract(t, html)

	urls := make([]string, 0, len(res.Links))
	for _, l := range res.Links {
		urls = append(urls, l.URL)
	}
	assert.Equal(t, []string{"https://example.com/a", "https://other.com/b"}, urls)

	// no two entries share a URL
	seen := map[string]bool{}
	for _, l := range res.Links {
		assert.False(t, seen[l.URL], "duplicate link %s", l.URL)
		seen[l.URL] = true
	}
}

func TestHarvestLinksCapturesTextAndContext(t *testing.T) {
	long := strings.Repeat("c", 500)
	html := `<html><body><main><p>` + long + ` <a href="/page">` + long + `</a></p></main></body></html>`

	res := extract(t, html)
	require.Len(t, res.Links, 1)

	l := res.Links[0]
	assert.LessOrEqual(t, len([]rune(l.Text)), 200)
	assert.LessOrEqual(t, len([]rune(l.Context)), 200)
	assert.NotEmpty(t, l.Context)
	assert.InDelta(t, 0.5, l.RelevanceScore, 1e-9)
}

func TestHarvestLinksDocumentOrder(t *testing.T) {
	html := `<html><body><main>
		<a href="/one">one</a>
		<a href="/two">two</a>
		<a href="/three">three</a>
	</main></body></html>`

	res := extract(t, html)
	require.Len(t, res.Links, 3)
	assert.Equal(t, "https://example.com/one", res.Links[0].URL)
	assert.Equal(t, "https://example.com/two", res.Links[1].URL)
	assert.Equal(t, "https://example.com/three", res.Links[2].URL)
}
