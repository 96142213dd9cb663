package fetcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := map[string]docKind{
		"https://example.com/spec.pdf":            kindPDF,
		"https://example.com/openapi.yaml":        kindYAML,
		"https://example.com/openapi.yml":         kindYAML,
		"https://example.com/data.json":           kindJSON,
		"https://example.com/feed.xml":            kindXML,
		"https://example.com/page":                kindHTML,
		"https://example.com/page.html":           kindHTML,
		"https://example.com/spec.pdf?download=1": kindPDF,
		"://bad":                                  kindHTML,
	}
	for url, want := range cases {
		assert.Equal(t, want, classify(url), "url %s", url)
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&statusError{Code: 403}, "forbidden"},
		{&statusError{Code: 404}, "not-found"},
		{&statusError{Code: 500}, "network"},
		{&statusError{Code: 301}, "network"},
		{context.DeadlineExceeded, "timeout"},
		{&net.DNSError{Err: "no such host"}, "network"},
		{errors.New("navigation timeout exceeded"), "timeout"},
		{errors.New("x509: certificate signed by unknown authority"), "ssl"},
		{errors.New("net::ERR_CONNECTION_REFUSED"), "network"},
		{errors.New("something else entirely"), "unknown"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, classifyError(c.err), "err %v", c.err)
	}
}

func TestStatusToError(t *testing.T) {
	assert.NoError(t, statusToError(0))
	assert.NoError(t, statusToError(200))
	assert.NoError(t, statusToError(204))

	for status, want := range map[int]string{
		403: "forbidden",
		404: "not-found",
		500: "network",
		301: "network",
	} {
		err := statusToError(status)
		require.Error(t, err)
		assert.Equal(t, want, classifyError(err), "status %d", status)
	}
}

func TestDocumentTitle(t *testing.T) {
	assert.Equal(t, "spec.pdf", documentTitle("https://example.com/docs/spec.pdf"))
	assert.Equal(t, "example.com", documentTitle("https://example.com/"))
}

func TestExtractDocumentJSON(t *testing.T) {
	text, err := extractDocument([]byte(`{"name":"api","version":2}`), kindJSON)
	require.NoError(t, err)
	assert.Contains(t, text, `"name": "api"`)

	_, err = extractDocument([]byte(`{not json`), kindJSON)
	assert.Error(t, err)
}

func TestExtractDocumentYAML(t *testing.T) {
	text, err := extractDocument([]byte("name: api\nversion: 2\n"), kindYAML)
	require.NoError(t, err)
	assert.Contains(t, text, "name: api")

	_, err = extractDocument([]byte("\t\tbad: [yaml"), kindYAML)
	assert.Error(t, err)
}

func TestExtractDocumentXML(t *testing.T) {
	text, err := extractDocument([]byte(`<rss><item><title>Hello</title><desc>World</desc></item></rss>`), kindXML)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "World")
}

func TestDownloadSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	f := NewDocumentFetcher("test-agent", 5*time.Second)
	body, err := f.Download(context.Background(), srv.URL+"/data.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestDownloadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewDocumentFetcher("", 5*time.Second)
	_, err := f.Download(context.Background(), srv.URL+"/missing.json")
	require.Error(t, err)
	assert.Equal(t, "not-found", classifyError(err))
}

func TestDownloadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewDocumentFetcher("", 5*time.Second)
	_, err := f.Download(ctx, "https://example.com/data.json")
	assert.Error(t, err)
}
