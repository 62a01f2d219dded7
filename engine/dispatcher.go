package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
)

// Dispatcher sends each page to exactly one engine. A host starts on the
// cheapest engine; when that engine fails, the host moves to the next engine
// for later pages. The failed page itself is not fetched again.
type Dispatcher struct {
	engines []Engine
	memory  *DomainMemory
}

// NewDispatcher creates a Dispatcher. engines are ordered cheapest first.
// memory may be nil, in which case every page goes to engines[0].
func NewDispatcher(engines []Engine, memory *DomainMemory) *Dispatcher {
	return &Dispatcher{engines: engines, memory: memory}
}

// Dispatch fetches req with the engine selected for its host.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.engines) == 0 {
		return nil, errors.New("dispatcher: no engines configured")
	}
	host := hostOf(req.URL)
	idx := d.pick(host)
	eng := d.engines[idx]

	result, err := eng.Fetch(ctx, req)
	if err == nil {
		if d.memory != nil {
			d.memory.Set(host, eng.Name())
		}
		return result, nil
	}

	if d.memory != nil && idx+1 < len(d.engines) && !errors.Is(err, context.Canceled) {
		next := d.engines[idx+1].Name()
		d.memory.Set(host, next)
		slog.Debug("dispatcher: escalating host", "host", host, "from", eng.Name(), "to", next, "error", err)
	}
	return nil, err
}

func (d *Dispatcher) pick(host string) int {
	if d.memory == nil {
		return 0
	}
	name := d.memory.Get(host)
	for i, e := range d.engines {
		if e.Name() == name {
			return i
		}
	}
	return 0
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
