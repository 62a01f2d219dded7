package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/harvest/models"
	"github.com/xuri/excelize/v2"
)

func testCo() models.Record {
	return models.Record{
		Name:        models.Text("Test Co"),
		Location:    models.Text("NY, USA"),
		Description: models.Text("Awesome startup"),
		Batch:       models.Text("Winter 2024"),
		DetailLink:  models.Text("/companies/test-co"),
		Website:     models.Text("https://testco.com"),
		Founders: []models.Founder{
			{Name: models.Text("Alice Founder"), LinkedIn: models.Text("https://linkedin.com/in/alice")},
		},
	}
}

func TestFoundersCell(t *testing.T) {
	tests := []struct {
		name     string
		founders []models.Founder
		want     string
	}{
		{"none", nil, ""},
		{"empty", []models.Founder{}, ""},
		{
			"full",
			[]models.Founder{{Name: models.Text("Alice"), LinkedIn: models.Text("https://linkedin.com/in/alice")}},
			"Alice (https://linkedin.com/in/alice)",
		},
		{
			"mixed keeps order",
			[]models.Founder{
				{Name: models.Text("Alice")},
				{LinkedIn: models.Text("https://linkedin.com/in/bob")},
				{},
				{Name: models.Text("Carol"), LinkedIn: models.Text("https://linkedin.com/in/carol")},
			},
			"Alice; (https://linkedin.com/in/bob); Carol (https://linkedin.com/in/carol)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FoundersCell(tt.founders); got != tt.want {
				t.Errorf("FoundersCell() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "csv"},
		{"CSV", "csv"},
		{"json", "json"},
		{" xlsx ", "xlsx"},
		{"md", "markdown"},
		{"markdown", "markdown"},
	}
	for _, tt := range tests {
		enc, err := ForFormat(tt.in)
		if err != nil {
			t.Fatalf("ForFormat(%q): %v", tt.in, err)
		}
		if enc.Format() != tt.want {
			t.Errorf("ForFormat(%q) = %s, want %s", tt.in, enc.Format(), tt.want)
		}
	}

	_, err := ForFormat("pdf")
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeInvalidInput {
		t.Fatalf("ForFormat(pdf) error = %v, want INVALID_INPUT", err)
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(CSV{}); got != "ycombinator_companies.csv" {
		t.Errorf("Filename = %q", got)
	}
	if got := Filename(Markdown{}); got != "ycombinator_companies.md" {
		t.Errorf("Filename = %q", got)
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := (CSV{}).Encode(&buf, []models.Record{testCo()}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := "Name,Location,Description,Batch,Website,Founders\n" +
		`Test Co,"NY, USA",Awesome startup,Winter 2024,https://testco.com,Alice Founder (https://linkedin.com/in/alice)` + "\n"
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestCSV_RowsInOrderWithAbsentFields(t *testing.T) {
	recs := []models.Record{
		{Name: models.Text("A"), Founders: []models.Founder{}},
		{Name: models.Text("B"), Location: models.Text(""), Founders: []models.Founder{}},
		{Founders: []models.Founder{}},
	}
	var buf bytes.Buffer
	if err := (CSV{}).Encode(&buf, recs); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != len(recs)+1 {
		t.Fatalf("got %d rows, want %d", len(rows), len(recs)+1)
	}
	if rows[1][0] != "A" || rows[2][0] != "B" || rows[3][0] != "" {
		t.Errorf("row order = %q, %q, %q", rows[1][0], rows[2][0], rows[3][0])
	}
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) != len(Header) {
			t.Errorf("row %d has %d cells", i, len(rows[i]))
		}
	}
}

func TestCSV_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (CSV{}).Encode(&buf, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.String() != strings.Join(Header, ",")+"\n" {
		t.Errorf("csv = %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	bare := models.Record{Name: models.Text("Bare"), Founders: []models.Founder{}}
	var buf bytes.Buffer
	if err := (JSON{}).Encode(&buf, []models.Record{testCo(), bare}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records", len(got))
	}
	if got[0]["website"] != "https://testco.com" {
		t.Errorf("website = %v", got[0]["website"])
	}
	if v, ok := got[1]["location"]; !ok || v != nil {
		t.Errorf("absent location should be null, got %v (present=%v)", v, ok)
	}

	buf.Reset()
	if err := (JSON{}).Encode(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty json = %q", buf.String())
	}
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := (XLSX{}).Encode(&buf, []models.Record{testCo()}); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(Header, ",") {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "NY, USA" || rows[1][5] != "Alice Founder (https://linkedin.com/in/alice)" {
		t.Errorf("data row = %v", rows[1])
	}
}

func TestMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := (Markdown{}).Encode(&buf, []models.Record{testCo()}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header, separator and one row, got %d lines:\n%s", len(lines), out)
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "|") {
			t.Errorf("not a table line: %q", l)
		}
	}
	if !strings.Contains(lines[0], "Founders") || !strings.Contains(lines[2], "Test Co") {
		t.Errorf("unexpected table:\n%s", out)
	}
}
