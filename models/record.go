package models

// Record is one harvested company.
//
// Optional text fields are pointers: nil means the source markup did not
// carry the field, which is distinct from an empty string. Website and
// Founders stay at their zero state until enrichment runs.
type Record struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Batch       *string `json:"batch"`

	// DetailLink is the site-relative path of the company's detail page.
	DetailLink *string `json:"detail_link"`

	Website  *string   `json:"website"`
	Founders []Founder `json:"founders"`
}

// Founder is one entry of a company's founder list, in detail-page order.
type Founder struct {
	Name     *string `json:"name"`
	LinkedIn *string `json:"linkedin"`
}

// ClearEnrichment resets the enrichment fields to their failure state.
func (r *Record) ClearEnrichment() {
	r.Website = nil
	r.Founders = []Founder{}
}

// Text returns a pointer to s. Used when a selector matched.
func Text(s string) *string {
	return &s
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
