package scraper

import (
	"context"
	"sync"
	"time"

	"github.com/use-agent/harvest/listing"
)

// scrollJS scrolls by the full document height to trigger the next batch
// of lazily loaded listing items.
const scrollJS = `() => window.scrollBy(0, document.body.scrollHeight)`

// ListingPage is a listing.Renderer backed by one pooled browser tab.
type ListingPage struct {
	tab     *tab
	timeout time.Duration
	navWait time.Duration

	closeOnce sync.Once
}

var _ listing.Renderer = (*ListingPage)(nil)

// OpenListing borrows a tab for a listing harvest. The caller must Close it.
func (s *Scraper) OpenListing(ctx context.Context) (listing.Renderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, categorizeError(err, "listing not opened")
	}
	t, err := s.acquire("", nil)
	if err != nil {
		return nil, err
	}
	return &ListingPage{
		tab:     t,
		timeout: s.scraperCfg.PageTimeout,
		navWait: s.scraperCfg.NavigationTimeout,
	}, nil
}

// Load navigates to url and waits for the DOM to settle.
func (p *ListingPage) Load(ctx context.Context, url string) error {
	ctx, cancel := withTimeout(ctx, p.navWait)
	defer cancel()

	page := p.tab.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return categorizeError(err, "navigation to listing failed")
	}
	if err := page.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		if ctx.Err() != nil {
			return categorizeError(ctx.Err(), "listing did not load in time")
		}
	}
	return nil
}

// Scroll moves the viewport down by the document height.
func (p *ListingPage) Scroll(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.tab.page.Context(ctx).Eval(scrollJS); err != nil {
		return categorizeError(err, "scrolling listing failed")
	}
	return nil
}

// Snapshot returns the serialized current DOM.
func (p *ListingPage) Snapshot(ctx context.Context) (string, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	html, err := p.tab.page.Context(ctx).HTML()
	if err != nil {
		return "", categorizeError(err, "failed to extract listing HTML")
	}
	return html, nil
}

// Close returns the tab to the pool. Repeated calls are no-ops.
func (p *ListingPage) Close() error {
	p.closeOnce.Do(p.tab.release)
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
