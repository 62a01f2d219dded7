package engine

import (
	"context"
	"fmt"
)

// RodFetchFunc renders a page in the shared browser. It is injected from
// main.go so that engine/ never imports scraper/.
type RodFetchFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// RodEngine fetches detail pages through a headless browser tab. It is the
// fallback for pages the plain HTTP engine cannot load.
type RodEngine struct {
	fetchFunc RodFetchFunc
}

// NewRodEngine creates a RodEngine around fetchFunc.
func NewRodEngine(fetchFunc RodFetchFunc) *RodEngine {
	return &RodEngine{fetchFunc: fetchFunc}
}

func (e *RodEngine) Name() string { return "rod" }

// Fetch returns a *StatusError when the rendered navigation reports a
// non-2xx status.
func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.fetchFunc == nil {
		return nil, fmt.Errorf("rod: fetchFunc not configured")
	}
	result, err := e.fetchFunc(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("rod: %w", err)
	}
	// Zero means the browser could not read a status; the HTML is still used.
	if result.StatusCode != 0 && (result.StatusCode < 200 || result.StatusCode > 299) {
		return nil, &StatusError{StatusCode: result.StatusCode, URL: req.URL}
	}
	result.EngineName = e.Name()
	return result, nil
}
