package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/ledongthuc/pdf"
	"gopkg.in/yaml.v3"
)

// maxPDFPages bounds page-by-page PDF text extraction.
const maxPDFPages = 50

// DocumentFetcher downloads raw bytes for non-HTML documents with a plain
// HTTP GET. No browser involved.
type DocumentFetcher struct {
	collector *colly.Collector
}

// NewDocumentFetcher builds the base collector; each download clones it
// for clean per-request state.
func NewDocumentFetcher(userAgent string, timeout time.Duration) *DocumentFetcher {
	c := colly.NewCollector()
	c.IgnoreRobotsTxt = true
	if userAgent != "" {
		c.UserAgent = userAgent
	}
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}
	return &DocumentFetcher{collector: c}
}

// Download performs the GET and returns the raw body. Non-2xx statuses
// come back as a statusError so they classify cleanly.
func (f *DocumentFetcher) Download(ctx context.Context, targetURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := f.collector.Clone()

	var body []byte
	var status int
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(targetURL); err != nil {
		// "already visited" is an artifact of colly's dedup, not a failure
		if !strings.Contains(err.Error(), "already visited") {
			fetchErr = err
		}
	}
	c.Wait()

	if fetchErr != nil {
		if status != 0 && (status < 200 || status >= 300) {
			return nil, &statusError{Code: status}
		}
		return nil, fetchErr
	}
	return body, nil
}

// extractDocument turns raw document bytes into plain text per kind.
func extractDocument(body []byte, kind docKind) (string, error) {
	switch kind {
	case kindPDF:
		return extractPDF(body)
	case kindYAML:
		return extractYAML(body)
	case kindJSON:
		return extractJSON(body)
	case kindXML:
		return extractXML(body)
	default:
		return string(body), nil
	}
}

func extractPDF(body []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	pages := r.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func extractYAML(body []byte) (string, error) {
	var v any
	if err := yaml.Unmarshal(body, &v); err != nil {
		return "", fmt.Errorf("parse yaml: %w", err)
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("reformat yaml: %w", err)
	}
	return string(out), nil
}

func extractJSON(body []byte) (string, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return "", fmt.Errorf("parse json: %w", err)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("reformat json: %w", err)
	}
	return string(out), nil
}

func extractXML(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse xml: %w", err)
		}
		if cd, ok := tok.(xml.CharData); ok {
			if text := strings.TrimSpace(string(cd)); text != "" {
				b.WriteString(text)
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}
