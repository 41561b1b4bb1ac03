// Package export writes match records to CSV, JSON, XLSX and Markdown.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/footyscrape/models"
)

// Format is an output file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatXLSX     Format = "xlsx"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatXLSX, FormatMarkdown}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename returns the default output name, botola_matches_<timestamp>.<ext>.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("botola_matches_%s.%s", now.Format("20060102_150405"), f.Ext())
}

// Write encodes records to w in format f.
func Write(f Format, w io.Writer, records []models.MatchRecord) error {
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(w, records)
	case FormatJSON:
		err = WriteJSON(w, records)
	case FormatXLSX:
		err = WriteXLSX(w, records)
	case FormatMarkdown:
		err = WriteMarkdown(w, records)
	default:
		return models.NewScrapeError(models.ErrCodeInvalidInput, fmt.Sprintf("unknown export format %q", f), nil)
	}
	if err != nil {
		return models.NewScrapeError(models.ErrCodeExportFailed, "export "+string(f)+" failed", err)
	}
	return nil
}

// row flattens a record in models.Columns order.
func row(r models.MatchRecord) []string {
	return []string{
		r.Season,
		r.Date,
		r.Time,
		r.HomeTeam,
		r.AwayTeam,
		r.Score,
		goals(r.HomeGoals),
		goals(r.AwayGoals),
		r.ExpectedGoalsHome,
		r.ExpectedGoalsAway,
		r.ShotsHome,
		r.ShotsAway,
		r.PossessionHome,
		r.PossessionAway,
	}
}

func goals(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
