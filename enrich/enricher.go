// Package enrich fills harvested records from their detail pages.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/workpool"
)

// DefaultConcurrency is the worker count used when none is configured.
const DefaultConcurrency = 10

// pacingDelay is waited before every detail fetch.
const pacingDelay = 500 * time.Millisecond

var errNoDetailLink = errors.New("record has no detail link")

// Fetcher retrieves the HTML of an absolute URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Stats summarises one Enrich call.
type Stats struct {
	Enriched int
	Failed   int
}

// Enricher fetches detail pages with bounded concurrency.
type Enricher struct {
	fetcher     Fetcher
	origin      string
	concurrency int
	pacing      time.Duration
}

// New returns an Enricher resolving detail links against origin and running
// at most concurrency fetches at once.
func New(fetcher Fetcher, origin string, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Enricher{
		fetcher:     fetcher,
		origin:      strings.TrimRight(origin, "/"),
		concurrency: concurrency,
		pacing:      pacingDelay,
	}
}

// Concurrency returns the worker pool size used per call.
func (e *Enricher) Concurrency() int { return e.concurrency }

// Enrich writes Website and Founders onto each record in place.
//
// Every index is handled by exactly one task, so tasks never share a slot.
// A failed record is logged and left with no website and no founders; no
// error escapes. Enrich returns after all tasks have finished.
func (e *Enricher) Enrich(ctx context.Context, records []models.Record) Stats {
	pool := workpool.New(e.concurrency)

	var enriched, failed atomic.Int32
	for i := range records {
		rec := &records[i]
		task := func() {
			if err := e.enrichOne(ctx, rec); err != nil {
				slog.Error("enrich: detail page failed", "url", e.detailURL(rec), "error", err)
				rec.ClearEnrichment()
				failed.Add(1)
				return
			}
			enriched.Add(1)
		}
		if err := pool.Submit(task); err != nil {
			rec.ClearEnrichment()
			failed.Add(1)
		}
	}
	pool.Wait()

	stats := Stats{Enriched: int(enriched.Load()), Failed: int(failed.Load())}
	slog.Info("enrichment finished",
		"records", len(records),
		"enriched", stats.Enriched,
		"failed", stats.Failed,
		"concurrency", e.concurrency,
	)
	return stats
}

func (e *Enricher) enrichOne(ctx context.Context, rec *models.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if rec.DetailLink == nil {
		return errNoDetailLink
	}
	target := e.detailURL(rec)

	if err := workpool.Sleep(ctx, e.pacing); err != nil {
		return err
	}
	html, err := e.fetcher.Fetch(ctx, target)
	if err != nil {
		return err
	}
	page, err := ParseDetail(html)
	if err != nil {
		return err
	}

	rec.Website = page.Website
	rec.Founders = page.Founders
	return nil
}

func (e *Enricher) detailURL(rec *models.Record) string {
	if rec.DetailLink == nil {
		return ""
	}
	return e.origin + *rec.DetailLink
}
