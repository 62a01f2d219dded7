// Package pipeline runs a full harvest: build the listing URL, scroll the
// listing, then enrich every record from its detail page.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/use-agent/harvest/enrich"
	"github.com/use-agent/harvest/listing"
	"github.com/use-agent/harvest/metrics"
	"github.com/use-agent/harvest/models"
)

// Opener hands out listing renderers, one per run.
type Opener interface {
	OpenListing(ctx context.Context) (listing.Renderer, error)
}

// Enricher fills detail fields on harvested records in place.
type Enricher interface {
	Enrich(ctx context.Context, records []models.Record) enrich.Stats
}

// Request is one harvest invocation.
type Request struct {
	// Limit caps the number of records; listing.NoLimit means uncapped.
	Limit   int
	Filters models.FilterSet
}

// Result is the output of a successful run.
type Result struct {
	URL     string          `json:"url"`
	Records []models.Record `json:"records"`
	Stats   enrich.Stats    `json:"stats"`
}

// Pipeline wires the listing and detail stages together. It holds no
// per-run state and may be shared by concurrent callers.
type Pipeline struct {
	baseURL   string
	opener    Opener
	harvester *listing.Harvester
	enricher  Enricher
	metrics   *metrics.Metrics
}

// New creates a Pipeline. m may be nil.
func New(baseURL string, opener Opener, harvester *listing.Harvester, enricher Enricher, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		baseURL:   baseURL,
		opener:    opener,
		harvester: harvester,
		enricher:  enricher,
		metrics:   m,
	}
}

// Run harvests and enriches. Listing failures abort the run and are
// returned as *models.ScrapeError; detail failures never do. The listing
// renderer is closed before enrichment starts and on every error path.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	target := listing.BuildURL(p.baseURL, req.Filters)
	slog.Info("harvest started", "url", target, "limit", req.Limit)

	start := time.Now()
	records, err := p.harvest(ctx, target, req.Limit)
	p.metrics.ObserveStage("harvest", time.Since(start))
	if err != nil {
		p.metrics.RunFinished("failed")
		slog.Error("harvest failed", "url", target, "error", err)
		return nil, asScrapeError(err)
	}
	p.metrics.RecordsHarvested(len(records))

	start = time.Now()
	stats := p.enricher.Enrich(ctx, records)
	p.metrics.ObserveStage("enrich", time.Since(start))
	p.metrics.DetailPages(stats.Enriched, stats.Failed)
	p.metrics.RunFinished("ok")

	return &Result{URL: target, Records: records, Stats: stats}, nil
}

func (p *Pipeline) harvest(ctx context.Context, target string, limit int) ([]models.Record, error) {
	r, err := p.opener.OpenListing(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			slog.Warn("closing listing renderer", "error", cerr)
		}
	}()
	return p.harvester.Harvest(ctx, r, target, limit)
}

func asScrapeError(err error) *models.ScrapeError {
	var se *models.ScrapeError
	if errors.As(err, &se) {
		return se
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "listing harvest timed out", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, "listing harvest failed", err)
	}
}
