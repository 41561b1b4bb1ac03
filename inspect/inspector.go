package inspect

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/use-agent/footyscrape/engine"
	"github.com/use-agent/footyscrape/models"
)

// Backend loads one page. *engine.Dispatcher satisfies it.
type Backend interface {
	Dispatch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error)
}

// Inspector fetches pages and analyzes them.
type Inspector struct {
	backend Backend
	timeout time.Duration
}

// New creates an Inspector.
func New(b Backend, timeout time.Duration) *Inspector {
	return &Inspector{backend: b, timeout: timeout}
}

// Inspect fetches url without a ready selector, so challenge pages and
// redesigned listings are reported rather than rejected.
func (i *Inspector) Inspect(ctx context.Context, url string, stealth bool) (*Report, error) {
	res, err := i.backend.Dispatch(ctx, &engine.FetchRequest{
		URL:     url,
		Timeout: i.timeout,
		Stealth: stealth,
	})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInspectFailed, "fetch "+url+" failed", err)
	}
	return AnalyzeHTML(res.HTML, firstNonEmpty(res.FinalURL, url))
}

// AnalyzeHTML parses rawHTML and analyzes it.
func AnalyzeHTML(rawHTML, sourceURL string) (*Report, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInspectFailed, "parse html failed", err)
	}
	return Analyze(doc, rawHTML, sourceURL), nil
}

// Render prints r for a terminal.
func Render(w io.Writer, r *Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Page structure")
	t.AppendRows([]table.Row{
		{"URL", r.URL},
		{"Title", r.Title},
		{"Site", r.SiteName},
		{"Tables", r.Tables},
		{"Headers", strings.Join(r.Headers, " | ")},
		{"[data-stat] elements", r.DataStat},
		{"Layout", fmt.Sprintf("%s (%d rows, %d matches)", r.Layout, r.LayoutRows, r.Matched)},
		{"Fingerprint", r.Fingerprint},
	})
	t.Render()

	if len(r.Rows) > 0 {
		rows := table.NewWriter()
		rows.SetOutputMirror(w)
		rows.SetStyle(table.StyleRounded)
		rows.SetTitle("First rows")
		header := table.Row{"#"}
		for c := 0; c < sampleCells; c++ {
			header = append(header, "["+strconv.Itoa(c)+"]")
		}
		rows.AppendHeader(header)
		for n, cells := range r.Rows {
			line := table.Row{n + 1}
			for _, c := range cells {
				line = append(line, c)
			}
			rows.AppendRow(line)
		}
		rows.Render()
	}

	classes := table.NewWriter()
	classes.SetOutputMirror(w)
	classes.SetStyle(table.StyleRounded)
	classes.SetTitle("Classes")
	classes.AppendHeader(table.Row{"Keyword", "Count", "Samples"})
	for _, h := range r.Classes {
		var samples []string
		for _, s := range h.Samples {
			samples = append(samples, s.Class+": "+s.Text)
		}
		classes.AppendRow(table.Row{h.Keyword, h.Count, strings.Join(samples, "\n")})
	}
	classes.Render()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
