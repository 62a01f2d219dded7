package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/harvest/models"
	"github.com/ysmood/gson"
)

// tab is a pooled browser page prepared for one navigation sequence.
type tab struct {
	s      *Scraper
	page   *rod.Page
	router *rod.HijackRouter
}

// acquire borrows a page from the pool and prepares it for target: stealth
// script, extra headers, and resource blocking are all installed before
// the first navigation so they apply to it.
func (s *Scraper) acquire(target string, headers map[string]string) (*tab, error) {
	page, err := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to acquire page from pool", err)
	}
	s.activePages.Add(1)

	if s.browserCfg.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	extra := make(map[string]string, len(headers)+1)
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		extra["Referer"] = u.Scheme + "://" + u.Host + "/"
	}
	for k, v := range headers {
		extra[k] = v
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(extra)}).Call(page); err != nil {
		slog.Debug("setting extra headers failed", "error", err)
	}

	return &tab{
		s:      s,
		page:   page,
		router: setupHijack(page, s.scraperCfg.BlockedResourceTypes),
	}, nil
}

// release blanks the page and returns it to the pool. It uses the page
// without any request context so cleanup works after a deadline.
func (t *tab) release() {
	if t.router != nil {
		_ = t.router.Stop()
	}
	if err := t.page.Navigate("about:blank"); err != nil {
		slog.Warn("cleanup: failed to navigate to about:blank", "error", err)
	}
	t.s.pagePool.Put(t.page)
	t.s.activePages.Add(-1)
}

// toHeadersMap converts a plain string map to proto.NetworkHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// evalStringOrEmpty evaluates js and returns its string result, or "".
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// categorizeError maps browser failures onto API error codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
