package engine

import (
	"context"
	"time"

	"github.com/use-agent/harvest/models"
)

// PageFetcher adapts a Dispatcher to the single-URL fetch used by enrichment.
type PageFetcher struct {
	dispatcher *Dispatcher
	timeout    time.Duration
}

// NewPageFetcher returns a PageFetcher bounding each fetch by timeout.
func NewPageFetcher(d *Dispatcher, timeout time.Duration) *PageFetcher {
	return &PageFetcher{dispatcher: d, timeout: timeout}
}

// Fetch returns the page HTML. Failures are reported as *models.FetchError.
func (f *PageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	result, err := f.dispatcher.Dispatch(ctx, &FetchRequest{URL: url, Timeout: f.timeout})
	if err != nil {
		return "", &models.FetchError{URL: url, Err: err}
	}
	return result.HTML, nil
}
