package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/use-agent/harvest/models"
)

// JSON writes the records as an indented array, absent fields as null.
type JSON struct{}

func (JSON) Format() string      { return "json" }
func (JSON) ContentType() string { return "application/json; charset=utf-8" }
func (JSON) Extension() string   { return "json" }

func (JSON) Encode(w io.Writer, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	return nil
}
