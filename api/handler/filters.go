package handler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/use-agent/harvest/models"
)

const filterPrefix = "filters["

// parseFilterQuery reads filters[key]=v and filters[key][]=v pairs from a
// raw query string, keeping the order keys first appear in. url.Values is
// not used because it loses that order.
func parseFilterQuery(rawQuery string) (models.FilterSet, error) {
	var order []string
	values := make(map[string]models.FilterValue)

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return models.FilterSet{}, fmt.Errorf("malformed query key %q", rawKey)
		}
		if !strings.HasPrefix(key, filterPrefix) {
			continue
		}
		val, err := url.QueryUnescape(rawVal)
		if err != nil {
			return models.FilterSet{}, fmt.Errorf("malformed value for %s", key)
		}

		name, rest, ok := strings.Cut(key[len(filterPrefix):], "]")
		if !ok || name == "" {
			return models.FilterSet{}, fmt.Errorf("malformed filter parameter %q", key)
		}

		prev, seen := values[name]
		if !seen {
			order = append(order, name)
		}
		switch rest {
		case "":
			values[name] = models.Scalar(val)
		case "[]":
			if seen && prev.IsList {
				values[name] = models.List(append(prev.List, val)...)
			} else {
				values[name] = models.List(val)
			}
		default:
			return models.FilterSet{}, fmt.Errorf("malformed filter parameter %q", key)
		}
	}

	entries := make([]models.FilterEntry, 0, len(order))
	for _, name := range order {
		entries = append(entries, models.FilterEntry{Key: name, Value: values[name]})
	}
	return models.NewFilterSet(entries...), nil
}
