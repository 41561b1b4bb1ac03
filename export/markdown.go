package export

import (
	"html"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/use-agent/footyscrape/models"
)

// markdownConverter is goroutine-safe and reused across calls.
var markdownConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

// WriteMarkdown renders records as a GitHub-flavoured Markdown table.
// Underscores in column names come out escaped (home\_team), which renders
// as plain text.
func WriteMarkdown(w io.Writer, records []models.MatchRecord) error {
	md, err := markdownConverter.ConvertString(tableHTML(records))
	if err != nil {
		return err
	}
	if !strings.HasSuffix(md, "\n") {
		md += "\n"
	}
	_, err = io.WriteString(w, md)
	return err
}

// tableHTML builds the <table> the converter turns into Markdown.
func tableHTML(records []models.MatchRecord) string {
	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for _, c := range models.Columns {
		b.WriteString("<th>" + html.EscapeString(c) + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, r := range records {
		b.WriteString("<tr>")
		for _, v := range row(r) {
			b.WriteString("<td>" + html.EscapeString(v) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}
