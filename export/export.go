// Package export encodes harvested records into downloadable artifacts.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/use-agent/harvest/models"
)

// Header is the column order shared by every tabular format.
var Header = []string{"Name", "Location", "Description", "Batch", "Website", "Founders"}

// Encoder writes records in one output format.
type Encoder interface {
	// Format is the name callers select the encoder by.
	Format() string
	ContentType() string
	Extension() string
	Encode(w io.Writer, records []models.Record) error
}

var encoders = map[string]Encoder{
	"csv":      CSV{},
	"json":     JSON{},
	"xlsx":     XLSX{},
	"markdown": Markdown{},
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{"csv", "json", "xlsx", "markdown"}
}

// ForFormat returns the encoder for name. An empty name selects CSV.
func ForFormat(name string) (Encoder, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		name = "csv"
	case "md":
		name = "markdown"
	}
	enc, ok := encoders[name]
	if !ok {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown format %q (supported: %s)", name, strings.Join(Formats(), ", ")), nil)
	}
	return enc, nil
}

// Filename is the attachment name for an artifact of enc.
func Filename(enc Encoder) string {
	return "ycombinator_companies." + enc.Extension()
}

// Row returns the cells of rec in Header order. Absent fields become "".
func Row(rec models.Record) []string {
	return []string{
		models.Deref(rec.Name),
		models.Deref(rec.Location),
		models.Deref(rec.Description),
		models.Deref(rec.Batch),
		models.Deref(rec.Website),
		FoundersCell(rec.Founders),
	}
}

// FoundersCell joins founders as "name (linkedin)" tokens separated by "; ".
// A missing part is left out of its token; a founder with neither part is
// skipped.
func FoundersCell(founders []models.Founder) string {
	tokens := make([]string, 0, len(founders))
	for _, f := range founders {
		switch {
		case f.Name != nil && f.LinkedIn != nil:
			tokens = append(tokens, fmt.Sprintf("%s (%s)", *f.Name, *f.LinkedIn))
		case f.Name != nil:
			tokens = append(tokens, *f.Name)
		case f.LinkedIn != nil:
			tokens = append(tokens, "("+*f.LinkedIn+")")
		}
	}
	return strings.Join(tokens, "; ")
}
