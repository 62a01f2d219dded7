package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/harvest/enrich"
	"github.com/use-agent/harvest/export"
	"github.com/use-agent/harvest/listing"
	"github.com/use-agent/harvest/metrics"
	"github.com/use-agent/harvest/models"
)

const (
	base   = "https://www.ycombinator.com/companies"
	origin = "https://www.ycombinator.com"
)

const listingHTML = `<html><body>
<a class="_company_i9oky_355" href="/companies/test-co">
  <span class="_coName_i9oky_470">Test Co</span>
  <span class="_coLocation_i9oky_486">NY, USA</span>
  <div class="mb-1.5 text-sm"><span>Awesome startup</span></div>
  <div class="_pillWrapper_i9oky_33"><span class="pill">Winter 2024</span></div>
</a>
</body></html>`

const detailHTML = `<html><body>
<a class="flex h-9 w-9 items-center justify-center rounded-md border bg-white" href="https://testco.com"></a>
<div class="flex flex-row items-center gap-x-2">
  <div class="text-xl font-bold">Alice Founder</div>
  <div class="flex gap-x-1 flex"><a href="https://linkedin.com/in/alice">LinkedIn</a></div>
</div>
</body></html>`

type fakeRenderer struct {
	html      string
	loaded    string
	loadErr   error
	scrollErr error
	closes    int
}

func (f *fakeRenderer) Load(_ context.Context, url string) error {
	f.loaded = url
	return f.loadErr
}
func (f *fakeRenderer) Scroll(context.Context) error { return f.scrollErr }
func (f *fakeRenderer) Snapshot(context.Context) (string, error) {
	return f.html, nil
}
func (f *fakeRenderer) Close() error {
	f.closes++
	return nil
}

type fakeOpener struct {
	r   *fakeRenderer
	err error
}

func (o *fakeOpener) OpenListing(context.Context) (listing.Renderer, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.r, nil
}

type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, url string) (string, error) {
	if html, ok := m[url]; ok {
		return html, nil
	}
	return "", &models.FetchError{URL: url, Err: errors.New("404")}
}

type countingEnricher struct{ calls int }

func (c *countingEnricher) Enrich(_ context.Context, records []models.Record) enrich.Stats {
	c.calls++
	return enrich.Stats{Enriched: len(records)}
}

func harvester() *listing.Harvester {
	return listing.NewHarvester(listing.Config{StallLimit: 1, MaxScrolls: 10})
}

func TestRun_EndToEnd(t *testing.T) {
	r := &fakeRenderer{html: listingHTML}
	fetcher := mapFetcher{origin + "/companies/test-co": detailHTML}
	p := New(base, &fakeOpener{r: r}, harvester(), enrich.New(fetcher, origin, 10), metrics.New())

	filters := models.NewFilterSet(models.FilterEntry{Key: "batch", Value: models.Scalar("W24")})
	res, err := p.Run(context.Background(), Request{Limit: 1, Filters: filters})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if r.loaded != base+"?batch=W24" {
		t.Errorf("loaded %q", r.loaded)
	}
	if r.closes != 1 {
		t.Errorf("renderer closed %d times, want 1", r.closes)
	}
	if res.Stats.Enriched != 1 || res.Stats.Failed != 0 {
		t.Errorf("stats = %+v", res.Stats)
	}

	var buf bytes.Buffer
	if err := (export.CSV{}).Encode(&buf, res.Records); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := `Test Co,"NY, USA",Awesome startup,Winter 2024,https://testco.com,Alice Founder (https://linkedin.com/in/alice)`
	if len(lines) != 2 || lines[1] != want {
		t.Errorf("csv rows = %q, want [header, %q]", lines, want)
	}
}

func TestRun_Idempotent(t *testing.T) {
	fetcher := mapFetcher{origin + "/companies/test-co": detailHTML}
	p := New(base, &fakeOpener{r: &fakeRenderer{html: listingHTML}}, harvester(), enrich.New(fetcher, origin, 2), nil)

	encode := func() string {
		res, err := p.Run(context.Background(), Request{Limit: listing.NoLimit})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		var buf bytes.Buffer
		if err := (export.CSV{}).Encode(&buf, res.Records); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	if a, b := encode(), encode(); a != b {
		t.Errorf("runs differ:\n%s\n---\n%s", a, b)
	}
}

func TestRun_EnrichmentFailureKeepsRow(t *testing.T) {
	r := &fakeRenderer{html: listingHTML}
	p := New(base, &fakeOpener{r: r}, harvester(), enrich.New(mapFetcher{}, origin, 1), nil)

	res, err := p.Run(context.Background(), Request{Limit: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records", len(res.Records))
	}
	rec := res.Records[0]
	if rec.Website != nil || rec.Founders == nil || len(rec.Founders) != 0 {
		t.Errorf("failed enrichment should be empty, got %+v", rec)
	}
	if res.Stats.Failed != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestRun_RenderErrorsAbort(t *testing.T) {
	navErr := errors.New("net::ERR_CONNECTION_REFUSED")
	tests := []struct {
		name     string
		opener   *fakeOpener
		wantCode string
		closes   int
	}{
		{
			name:     "open fails",
			opener:   &fakeOpener{err: models.NewScrapeError(models.ErrCodeBrowserCrash, "no tab", nil)},
			wantCode: models.ErrCodeBrowserCrash,
		},
		{
			name:     "load fails",
			opener:   &fakeOpener{r: &fakeRenderer{loadErr: navErr}},
			wantCode: models.ErrCodeNavigation,
			closes:   1,
		},
		{
			name:     "scroll times out",
			opener:   &fakeOpener{r: &fakeRenderer{scrollErr: context.DeadlineExceeded}},
			wantCode: models.ErrCodeTimeout,
			closes:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enr := &countingEnricher{}
			p := New(base, tt.opener, harvester(), enr, nil)

			res, err := p.Run(context.Background(), Request{Limit: 3})
			if res != nil {
				t.Errorf("expected no result, got %+v", res)
			}
			var se *models.ScrapeError
			if !errors.As(err, &se) || se.Code != tt.wantCode {
				t.Fatalf("err = %v, want code %s", err, tt.wantCode)
			}
			if enr.calls != 0 {
				t.Error("enrichment must not run after a render failure")
			}
			if tt.opener.r != nil && tt.opener.r.closes != tt.closes {
				t.Errorf("renderer closed %d times, want %d", tt.opener.r.closes, tt.closes)
			}
		})
	}
}

func TestRun_ZeroLimit(t *testing.T) {
	r := &fakeRenderer{html: listingHTML}
	enr := &countingEnricher{}
	p := New(base, &fakeOpener{r: r}, harvester(), enr, nil)

	res, err := p.Run(context.Background(), Request{Limit: 0})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Records) != 0 {
		t.Errorf("got %d records, want 0", len(res.Records))
	}
	if r.loaded == "" || r.closes != 1 {
		t.Errorf("loaded=%q closes=%d", r.loaded, r.closes)
	}
}
