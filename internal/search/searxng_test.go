package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "go channels", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"title": "Go channels", "url": "https://a.test/", "content": "intro", "score": 3.2},
			{"title": "no url", "url": "", "content": "skipped"},
			{"title": "Second", "url": "https://b.test/", "content": "more", "score": 1.1},
			{"title": "Third", "url": "https://c.test/", "content": "extra", "score": 0.5}
		]}`))
	}))
	defer srv.Close()

	results, err := NewSearxNG(srv.URL).Search(context.Background(), "go channels", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://a.test/", results[0].URL)
	assert.Equal(t, "intro", results[0].Snippet)
	assert.InDelta(t, 3.2, results[0].Score, 1e-9)
	assert.Equal(t, "https://b.test/", results[1].URL)
}

func TestSearchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewSearxNG(srv.URL).Search(context.Background(), "q", 5)
	assert.Error(t, err)
}

func TestSearchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := NewSearxNG(srv.URL).Search(context.Background(), "q", 5)
	assert.Error(t, err)
}
