// Package inspect reports how a season listing page is structured, to
// choose or repair the row layout when the site changes.
package inspect

import (
	"log/slog"
	nurl "net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/use-agent/footyscrape/extract"
)

const (
	sampleRows   = 3
	sampleCells  = 6
	sampleClass  = 3
	maxCellRunes = 50
	maxTextRunes = 40
)

// ClassHits counts elements whose class attribute contains a keyword.
type ClassHits struct {
	Keyword string        `json:"keyword"`
	Count   int           `json:"count"`
	Samples []ClassSample `json:"samples,omitempty"`
}

// ClassSample is one matched element.
type ClassSample struct {
	Class string `json:"class"`
	Text  string `json:"text"`
}

// Report describes one page.
type Report struct {
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	SiteName string `json:"site_name,omitempty"`
	Language string `json:"language,omitempty"`

	Tables  int        `json:"tables"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"sample_rows,omitempty"`

	Classes  []ClassHits `json:"classes"`
	DataStat int         `json:"data_stat_elements"`

	Layout      string `json:"layout"`
	LayoutRows  int    `json:"layout_rows"`
	Matched     int    `json:"matched_rows"`
	Fingerprint string `json:"fingerprint"`

	InspectedAt time.Time `json:"inspected_at"`
}

// Keywords are the class keywords counted by Analyze.
var Keywords = []string{"match", "team", "score"}

// Analyze builds a Report from a parsed document. rawHTML feeds the
// readability metadata and may be empty.
func Analyze(doc *goquery.Document, rawHTML, sourceURL string) *Report {
	r := &Report{URL: sourceURL, InspectedAt: time.Now().UTC()}

	r.Title, r.SiteName, r.Language = metadata(rawHTML, sourceURL)
	if r.Title == "" {
		r.Title = clean(doc.Find("title").First().Text())
	}

	tables := doc.Find("table")
	r.Tables = tables.Length()
	if r.Tables > 0 {
		first := tables.First()
		first.Find("th").Each(func(_ int, th *goquery.Selection) {
			r.Headers = append(r.Headers, clean(th.Text()))
		})
		dataRows := first.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
			return tr.ChildrenFiltered("td").Length() > 0
		})
		head(dataRows, sampleRows).Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			head(tr.ChildrenFiltered("td"), sampleCells).Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, truncate(clean(td.Text()), maxCellRunes))
			})
			r.Rows = append(r.Rows, cells)
		})
	}

	for _, kw := range Keywords {
		r.Classes = append(r.Classes, classHits(doc, kw))
	}
	r.DataStat = doc.Find("[data-stat]").Length()

	layout := extract.Probe(doc)
	rows := extract.Rows(doc, layout)
	r.Layout = layout.String()
	r.LayoutRows = rows.Length()
	ex := extract.NewExtractor(layout)
	rows.Each(func(_ int, row *goquery.Selection) {
		if ex.Extract(row, "").IsMatch() {
			r.Matched++
		}
	})
	r.Fingerprint = RowFingerprint(rows).String()
	return r
}

// metadata runs readability for title, site name and language. Listing
// pages often have no article body, so failures are expected and quiet.
func metadata(rawHTML, sourceURL string) (title, site, lang string) {
	if rawHTML == "" {
		return "", "", ""
	}
	u, err := nurl.Parse(sourceURL)
	if err != nil {
		return "", "", ""
	}
	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		slog.Debug("readability metadata unavailable", "url", sourceURL, "error", err)
		return "", "", ""
	}
	return clean(article.Title), clean(article.SiteName), article.Language
}

// classHits counts elements whose class attribute contains kw,
// case-insensitively.
func classHits(doc *goquery.Document, kw string) ClassHits {
	hits := ClassHits{Keyword: kw}
	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if !strings.Contains(strings.ToLower(class), kw) {
			return
		}
		hits.Count++
		if len(hits.Samples) < sampleClass {
			hits.Samples = append(hits.Samples, ClassSample{
				Class: class,
				Text:  truncate(clean(s.Text()), maxTextRunes),
			})
		}
	})
	return hits
}

// head returns the first n elements of sel.
func head(sel *goquery.Selection, n int) *goquery.Selection {
	return sel.Slice(0, min(sel.Length(), n))
}

func clean(s string) string { return strings.Join(strings.Fields(s), " ") }

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
