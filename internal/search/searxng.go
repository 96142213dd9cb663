// Package search provides the seed search provider for a crawl: a thin
// client for a SearxNG-compatible JSON API.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seekerlab/deepcrawl/pkg/crawl"
)

// SearxNG queries a SearxNG instance for seed results.
type SearxNG struct {
	baseURL string
	http    *http.Client
}

// NewSearxNG creates a client for the instance at baseURL.
func NewSearxNG(baseURL string) *SearxNG {
	return &SearxNG{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// Search returns up to limit results for query, in engine rank order.
func (s *SearxNG) Search(ctx context.Context, query string, limit int) ([]crawl.SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			Title   string  `json:"title"`
			URL     string  `json:"url"`
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	var out []crawl.SearchResult
	for _, r := range payload.Results {
		if r.URL == "" {
			continue
		}
		out = append(out, crawl.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Score:   r.Score,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
