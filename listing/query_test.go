package listing

import (
	"testing"

	"github.com/use-agent/harvest/models"
)

const base = "https://www.ycombinator.com/companies"

func TestBuildURL_EmptyFilters(t *testing.T) {
	if got := BuildURL(base, models.FilterSet{}); got != base {
		t.Errorf("zero filter set: got %q, want %q", got, base)
	}
	if got := BuildURL(base, models.NewFilterSet()); got != base {
		t.Errorf("empty filter set: got %q, want %q", got, base)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name    string
		filters models.FilterSet
		want    string
	}{
		{
			name: "scalars keep insertion order",
			filters: models.NewFilterSet(
				models.FilterEntry{Key: "regions", Value: models.Scalar("United States")},
				models.FilterEntry{Key: "batch", Value: models.Scalar("Winter 2024")},
			),
			want: base + "?regions=United+States&batch=Winter+2024",
		},
		{
			name: "reverse order is not sorted",
			filters: models.NewFilterSet(
				models.FilterEntry{Key: "batch", Value: models.Scalar("Winter 2024")},
				models.FilterEntry{Key: "regions", Value: models.Scalar("United States")},
			),
			want: base + "?batch=Winter+2024&regions=United+States",
		},
		{
			name: "list rendered as json",
			filters: models.NewFilterSet(
				models.FilterEntry{Key: "industry", Value: models.List("B2B", "Fintech")},
			),
			want: base + "?industry=%5B%22B2B%22%2C%22Fintech%22%5D",
		},
		{
			name: "empty list",
			filters: models.NewFilterSet(
				models.FilterEntry{Key: "industry", Value: models.List()},
			),
			want: base + "?industry=%5B%5D",
		},
		{
			name: "reserved characters escaped",
			filters: models.NewFilterSet(
				models.FilterEntry{Key: "team_size", Value: models.Scalar("1-10&more=yes")},
			),
			want: base + "?team_size=1-10%26more%3Dyes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildURL(base, tt.filters); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
