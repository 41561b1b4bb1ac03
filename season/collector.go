// Package season turns fetched listing pages into ordered match records,
// one season at a time.
package season

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/footyscrape/extract"
	"github.com/use-agent/footyscrape/models"
)

// Collector applies the row extractor to every row of one season's
// document.
type Collector struct {
	extractor *extract.Extractor
	dedupe    bool
}

// NewCollector creates a Collector reading rows with the given layout.
// When dedupe is true a fixture rendered twice in the same document is kept
// once (first occurrence wins).
func NewCollector(layout extract.Layout, dedupe bool) *Collector {
	return &Collector{
		extractor: extract.NewExtractor(layout),
		dedupe:    dedupe,
	}
}

// Layout returns the row layout the collector reads.
func (c *Collector) Layout() extract.Layout { return c.extractor.Layout() }

// Collect extracts the records of one season in document order. Rows that
// are not match rows are omitted; an empty result is not an error.
func (c *Collector) Collect(doc *goquery.Document, label string) ([]models.MatchRecord, models.SeasonReport) {
	report := models.SeasonReport{Label: label}
	if doc == nil {
		return nil, report
	}

	rows := extract.Rows(doc, c.Layout())
	report.Rows = rows.Length()

	records := make([]models.MatchRecord, 0, report.Rows)
	var seen map[string]struct{}
	if c.dedupe {
		seen = make(map[string]struct{}, report.Rows)
	}

	rows.Each(func(i int, row *goquery.Selection) {
		out := c.extractor.Extract(row, label)
		rec, ok := out.Record()
		if !ok {
			if report.Skipped == nil {
				report.Skipped = make(map[string]int)
			}
			report.Skipped[string(out.Reason())]++
			slog.Debug("row skipped", "season", label, "row", i, "reason", out.Reason())
			return
		}
		if seen != nil {
			key := rec.FixtureKey()
			if _, dup := seen[key]; dup {
				report.Duplicates++
				slog.Debug("duplicate fixture dropped", "season", label, "row", i,
					"home", rec.HomeTeam, "away", rec.AwayTeam)
				return
			}
			seen[key] = struct{}{}
		}
		records = append(records, rec)
	})

	report.Matched = len(records)
	if len(records) == 0 {
		slog.Info("no matches found", "season", label, "rows", report.Rows)
	} else {
		slog.Info("season collected", "season", label,
			"rows", report.Rows, "matched", report.Matched,
			"duplicates", report.Duplicates,
		)
	}
	return records, report
}
