package export

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/use-agent/harvest/models"
)

// Markdown writes a GitHub-flavoured pipe table.
type Markdown struct{}

func (Markdown) Format() string      { return "markdown" }
func (Markdown) ContentType() string { return "text/markdown; charset=utf-8" }
func (Markdown) Extension() string   { return "md" }

// markdownConverter is goroutine-safe and shared by all calls.
var markdownConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

func (Markdown) Encode(w io.Writer, records []models.Record) error {
	md, err := markdownConverter.ConvertString(tableHTML(records))
	if err != nil {
		return fmt.Errorf("export: markdown: %w", err)
	}
	if _, err := io.WriteString(w, strings.TrimSpace(md)+"\n"); err != nil {
		return fmt.Errorf("export: markdown write: %w", err)
	}
	return nil
}

// tableHTML renders records as an escaped HTML table for conversion.
func tableHTML(records []models.Record) string {
	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for _, h := range Header {
		b.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, rec := range records {
		b.WriteString("<tr>")
		for _, cell := range Row(rec) {
			b.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}
