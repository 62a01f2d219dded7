package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/harvest/engine"
)

// statusJS reads the HTTP status of the last navigation without needing
// network event listeners, which conflict with request hijacking.
const statusJS = `() => {
	try {
		const entries = performance.getEntriesByType("navigation");
		if (entries.length > 0) return entries[0].responseStatus || 0;
	} catch(e) {}
	return 0;
}`

// RenderDetail loads a detail page in a pooled tab and returns its rendered
// HTML. It has the engine.RodFetchFunc signature.
//
// Lifecycle:
//
//  1. Timeout guard
//  2. Acquire and prepare tab (stealth, headers, blocking)
//  3. Navigate and wait for the DOM to settle
//  4. Extract HTML, title, status, final URL
//  5. Release tab (deferred, runs on every path)
func (s *Scraper) RenderDetail(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	timeout := req.Timeout
	if timeout <= 0 || timeout > s.scraperCfg.PageTimeout {
		timeout = s.scraperCfg.PageTimeout
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	t, err := s.acquire(req.URL, req.Headers)
	if err != nil {
		return nil, err
	}
	defer t.release()

	p := t.page.Context(ctx)
	if err := p.Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to detail page failed")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "url", req.URL, "error", err)
	}

	html, err := p.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	var status int
	if res, err := p.Eval(statusJS); err == nil {
		status = res.Value.Int()
	}
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &engine.FetchResult{
		HTML:       html,
		Title:      evalStringOrEmpty(p, `() => document.title`),
		StatusCode: status,
		FinalURL:   finalURL,
	}, nil
}
