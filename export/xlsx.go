package export

import (
	"fmt"
	"io"

	"github.com/use-agent/harvest/models"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Companies"

// XLSX writes a single-sheet workbook with a bold, frozen header row.
type XLSX struct{}

func (XLSX) Format() string { return "xlsx" }
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSX) Extension() string { return "xlsx" }

func (XLSX) Encode(w io.Writer, records []models.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("export: xlsx sheet: %w", err)
	}

	if err := setRow(f, 1, Header); err != nil {
		return err
	}
	for i, rec := range records {
		if err := setRow(f, i+2, Row(rec)); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("export: xlsx style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, style); err != nil {
		return fmt.Errorf("export: xlsx style: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("export: xlsx panes: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: xlsx write: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export: xlsx row %d: %w", row, err)
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("export: xlsx row %d: %w", row, err)
	}
	return nil
}
