package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/use-agent/harvest/models"
)

// CSV writes RFC 4180 comma-separated values with a header row.
type CSV struct{}

func (CSV) Format() string      { return "csv" }
func (CSV) ContentType() string { return "text/csv; charset=utf-8" }
func (CSV) Extension() string   { return "csv" }

func (CSV) Encode(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: csv header: %w", err)
	}
	for i, rec := range records {
		if err := cw.Write(Row(rec)); err != nil {
			return fmt.Errorf("export: csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
