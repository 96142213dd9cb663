package extractor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "https://example.com/docs/"

func extract(t *testing.T, html string) *Result {
	t.Helper()
	res, err := New().Extract(html, base)
	require.NoError(t, err)
	return res
}

func longText(n int) string {
	return strings.Repeat("word ", n/5+1)[:n]
}

func TestTruncateIdempotent(t *testing.T) {
	for _, s := range []string{"", "short", longText(500), "héllo wörld ünicode répeat"} {
		once := Truncate(s, 10)
		assert.Equal(t, once, Truncate(once, 10))
		assert.LessOrEqual(t, len([]rune(once)), 10)
	}
	assert.Equal(t, "", Truncate("anything", 0))
}

func TestExtractPrefersSelectorPriority(t *testing.T) {
	html := fmt.Sprintf(`<html><head><title>Docs</title></head><body>
		<nav>navigation junk that must not appear</nav>
		<article>%s</article>
		<footer>footer junk</footer>
	</body></html>`, "The article body. "+longText(300))

	res := extract(t, html)
	assert.Equal(t, "Docs", res.Title)
	assert.Contains(t, res.Text, "The article body.")
	assert.NotContains(t, res.Text, "navigation junk")
	assert.NotContains(t, res.Text, "footer junk")
}

func TestExtractParagraphFallback(t *testing.T) {
	html := fmt.Sprintf(`<html><body>
		<div><p>First paragraph. %s</p><p>Second paragraph.</p></div>
	</body></html>`, longText(250))

	res := extract(t, html)
	assert.Contains(t, res.Text, "First paragraph.")
	assert.Contains(t, res.Text, "Second paragraph.")
}

func TestExtractBodyFallback(t *testing.T) {
	res := extract(t, `<html><body><span>tiny page</span></body></html>`)
	assert.Contains(t, res.Text, "tiny page")
}

func TestExtractIncludesMetaAndHeadings(t *testing.T) {
	html := `<html><head>
		<title>Title Here</title>
		<meta name="description" content="A description of the page.">
	</head><body>
		<h1>Main Heading</h1>
		<h3>Sub Heading</h3>
		<ul><li>first item</li><li>second item</li></ul>
	</body></html>`

	res := extract(t, html)
	assert.Equal(t, "A description of the page.", res.Description)
	for _, want := range []string{"Title Here", "A description", "Main Heading", "Sub Heading", "first item", "second item"} {
		assert.Contains(t, res.Text, want)
	}
}

func TestExtractContentCap(t *testing.T) {
	html := fmt.Sprintf(`<html><body><article>%s</article></body></html>`, longText(40000))

	res := extract(t, html)
	assert.LessOrEqual(t, len([]rune(res.Text)), ContentCap)
	// capping is idempotent
	assert.Equal(t, res.Text, Truncate(res.Text, ContentCap))
}

func TestCollapseWhitespace(t *testing.T) {
	got := collapse("  a   b \n\n\n  c\td  \n")
	assert.Equal(t, "a b\nc d", got)
}
