package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AllowedFilters lists the listing filters the directory understands.
// Anything else supplied by a caller is dropped before the URL is built.
var AllowedFilters = []string{
	"regions", "batch", "industry", "team_size", "isHiring", "nonprofit", "top_company",
}

// FilterValue is either a scalar string or an ordered list of strings.
type FilterValue struct {
	Scalar string
	List   []string
	IsList bool
}

// Scalar builds a single-valued filter.
func Scalar(v string) FilterValue {
	return FilterValue{Scalar: v}
}

// List builds a multi-valued filter.
func List(v ...string) FilterValue {
	if v == nil {
		v = []string{}
	}
	return FilterValue{List: v, IsList: true}
}

// Render returns the text placed in the query string before escaping:
// JSON array text for lists, the plain string otherwise.
func (v FilterValue) Render() string {
	if !v.IsList {
		return v.Scalar
	}
	list := v.List
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return ""
	}
	return string(b)
}

// UnmarshalJSON accepts a string, a number, a bool, or an array of those.
func (v *FilterValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		list := make([]string, 0, len(raw))
		for _, item := range raw {
			s, err := scalarText(item)
			if err != nil {
				return err
			}
			list = append(list, s)
		}
		*v = List(list...)
		return nil
	}
	s, err := scalarText(data)
	if err != nil {
		return err
	}
	*v = Scalar(s)
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (v FilterValue) MarshalJSON() ([]byte, error) {
	if v.IsList {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Scalar)
}

func scalarText(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return fmt.Sprint(b), nil
	}
	return "", fmt.Errorf("filter value must be a string or list of strings, got %s", data)
}

// FilterEntry is one key/value pair of a FilterSet.
type FilterEntry struct {
	Key   string
	Value FilterValue
}

// FilterSet maps filter names to values and remembers insertion order.
// The zero value is an empty set. A FilterSet is not modified after it is built.
type FilterSet struct {
	m *orderedmap.OrderedMap[string, FilterValue]
}

// NewFilterSet builds a set from entries in the given order. A repeated key
// keeps its first position and takes the last value.
func NewFilterSet(entries ...FilterEntry) FilterSet {
	m := orderedmap.New[string, FilterValue](len(entries))
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return FilterSet{m: m}
}

// Len returns the number of filters.
func (f FilterSet) Len() int {
	if f.m == nil {
		return 0
	}
	return f.m.Len()
}

// Get returns the value stored for key.
func (f FilterSet) Get(key string) (FilterValue, bool) {
	if f.m == nil {
		return FilterValue{}, false
	}
	return f.m.Get(key)
}

// Entries returns a copy of the pairs in insertion order.
func (f FilterSet) Entries() []FilterEntry {
	if f.m == nil {
		return nil
	}
	out := make([]FilterEntry, 0, f.m.Len())
	for pair := f.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, FilterEntry{Key: pair.Key, Value: pair.Value})
	}
	return out
}

// Permit returns a new set holding only the allowed keys, order preserved.
func (f FilterSet) Permit(allowed ...string) FilterSet {
	ok := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		ok[k] = struct{}{}
	}
	var kept []FilterEntry
	for _, e := range f.Entries() {
		if _, found := ok[e.Key]; found {
			kept = append(kept, e)
		}
	}
	return NewFilterSet(kept...)
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (f *FilterSet) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = FilterSet{}
		return nil
	}
	m := orderedmap.New[string, FilterValue]()
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("filters: %w", err)
	}
	f.m = m
	return nil
}

// MarshalJSON encodes the set as a JSON object in insertion order.
func (f FilterSet) MarshalJSON() ([]byte, error) {
	if f.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f.m)
}
