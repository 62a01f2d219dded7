package listing

import (
	"net/url"
	"strings"

	"github.com/use-agent/harvest/models"
)

// BuildURL appends filters to base as a query string.
//
// Keys keep their insertion order. List values are rendered as JSON array
// text before escaping; scalars are used as-is. An empty set returns base
// untouched.
func BuildURL(base string, filters models.FilterSet) string {
	entries := filters.Entries()
	if len(entries) == 0 {
		return base
	}

	pairs := make([]string, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, e.Key+"="+url.QueryEscape(e.Value.Render()))
	}
	return base + "?" + strings.Join(pairs, "&")
}
