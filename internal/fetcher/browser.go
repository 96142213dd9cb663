package fetcher

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// maxScrollRounds bounds the dynamic-content expansion loop.
const maxScrollRounds = 5

// Browser wraps a single headless Chrome instance shared by all
// concurrent fetches. Each fetch gets its own page.
type Browser struct {
	browser     *rod.Browser
	pageTimeout time.Duration
	userAgent   string
}

// NewBrowser launches headless Chrome and connects to it.
func NewBrowser(cfg Config) (*Browser, error) {
	u, err := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Launch()
	if err != nil {
		return nil, err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, err
	}

	return &Browser{
		browser:     browser,
		pageTimeout: cfg.PerPageTimeout,
		userAgent:   cfg.UserAgent,
	}, nil
}

// FetchHTML navigates to targetURL, waits for DOM-ready, runs the bounded
// dynamic-content expansion, and returns the rendered HTML.
func (b *Browser) FetchHTML(ctx context.Context, targetURL string) (string, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(b.pageTimeout)

	if b.userAgent != "" {
		_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: b.userAgent,
		})
	}

	// the main document response carries the HTTP status the rendered
	// page alone cannot reveal
	var status int
	waitStatus := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type != proto.NetworkResourceTypeDocument {
			return false
		}
		status = e.Response.Status
		return true
	})

	if err := page.Navigate(targetURL); err != nil {
		return "", err
	}
	waitStatus()

	// DOM-ready is enough; waiting for network idle stalls on slow
	// trackers and ad beacons.
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	if err := statusToError(status); err != nil {
		return "", err
	}

	b.expandDynamicContent(page)

	return page.HTML()
}

// expandDynamicContent scrolls to the bottom repeatedly, clicking
// "load more"-style buttons when visible, until the page height stops
// growing or the round ceiling is hit.
func (b *Browser) expandDynamicContent(page *rod.Page) {
	for i := 0; i < maxScrollRounds; i++ {
		prev := b.scrollHeight(page)

		_, _ = page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
		b.clickLoadMore(page)
		time.Sleep(300 * time.Millisecond)

		if b.scrollHeight(page) <= prev {
			return
		}
	}
}

func (b *Browser) scrollHeight(page *rod.Page) int {
	res, err := page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

func (b *Browser) clickLoadMore(page *rod.Page) {
	el, err := page.Timeout(500 * time.Millisecond).ElementR("button, a", "/(load|show|see) more/i")
	if err != nil {
		return
	}
	_ = el.Click(proto.InputMouseButtonLeft, 1)
}

// Close shuts down the browser process.
func (b *Browser) Close() error {
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}
