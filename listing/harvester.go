package listing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/workpool"
)

// NoLimit disables the record cap passed to Harvest.
const NoLimit = -1

// settleDelay is the pause after each scroll so lazily loaded items can render.
const settleDelay = time.Second

// Renderer is a live, scrollable view of the listing page.
// Close must be called on every exit path to release the underlying tab.
type Renderer interface {
	Load(ctx context.Context, url string) error
	Scroll(ctx context.Context) error
	Snapshot(ctx context.Context) (string, error)
	Close() error
}

// Config bounds the scroll loop.
type Config struct {
	// StallLimit is how many consecutive scrolls may add no new item
	// before the listing is considered exhausted. Values < 1 mean 1.
	StallLimit int

	// MaxScrolls caps the number of scrolls. 0 disables the ceiling.
	MaxScrolls int
}

// Harvester accumulates listing records by scrolling a Renderer.
type Harvester struct {
	cfg    Config
	settle time.Duration
}

// NewHarvester returns a Harvester with the given loop bounds.
func NewHarvester(cfg Config) *Harvester {
	if cfg.StallLimit < 1 {
		cfg.StallLimit = 1
	}
	return &Harvester{cfg: cfg, settle: settleDelay}
}

// Harvest loads url in r and scrolls until limit records are collected or the
// listing stops growing. limit < 0 means no cap.
//
// Items are identified by their position in the document: each snapshot is
// scanned from the first item not yet harvested. Renderer errors are returned
// as-is; a snapshot that fails to parse simply contributes nothing.
func (h *Harvester) Harvest(ctx context.Context, r Renderer, url string, limit int) ([]models.Record, error) {
	if err := r.Load(ctx, url); err != nil {
		return nil, err
	}

	records := []models.Record{}
	reached := func() bool { return limit >= 0 && len(records) >= limit }

	stalls := 0
	for scroll := 0; !reached(); scroll++ {
		if h.cfg.MaxScrolls > 0 && scroll >= h.cfg.MaxScrolls {
			slog.Warn("listing: scroll ceiling hit", "url", url, "scrolls", scroll, "count", len(records))
			break
		}

		if err := r.Scroll(ctx); err != nil {
			return nil, err
		}
		if err := workpool.Sleep(ctx, h.settle); err != nil {
			return nil, err
		}
		snapshot, err := r.Snapshot(ctx)
		if err != nil {
			return nil, err
		}

		before := len(records)
		records = h.scan(snapshot, records, limit)
		slog.Debug("listing: snapshot scanned", "scroll", scroll, "new", len(records)-before, "count", len(records))

		if len(records) > before {
			stalls = 0
			continue
		}
		stalls++
		if stalls >= h.cfg.StallLimit {
			slog.Debug("listing: no growth, stopping", "scrolls", scroll+1, "count", len(records))
			break
		}
	}

	slog.Info("listing harvested", "url", url, "count", len(records), "limit", limit)
	return records, nil
}

// scan appends items past len(records) until the limit is met.
func (h *Harvester) scan(snapshot string, records []models.Record, limit int) []models.Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot))
	if err != nil {
		slog.Warn("listing: unparseable snapshot", "error", err)
		return records
	}

	seen := len(records)
	doc.FindMatcher(selItem).EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i < seen {
			return true
		}
		records = append(records, extractItem(item))
		return limit < 0 || len(records) < limit
	})
	return records
}

// extractItem reads one listing card. Fields whose selector misses stay nil.
func extractItem(item *goquery.Selection) models.Record {
	rec := models.Record{
		Name:        firstText(item, selName),
		Location:    firstText(item, selLocation),
		Description: firstText(item, selDescription),
		Batch:       firstText(item, selBatch),
		Founders:    []models.Founder{},
	}
	if href, ok := item.Attr(detailLinkAttr); ok {
		rec.DetailLink = models.Text(href)
	}
	return rec
}

func firstText(s *goquery.Selection, m goquery.Matcher) *string {
	match := s.FindMatcher(m).First()
	if match.Length() == 0 {
		return nil
	}
	return models.Text(strings.TrimSpace(match.Text()))
}
