package season

import (
	"context"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/footyscrape/extract"
	"github.com/use-agent/footyscrape/models"
)

// Source is one season to collect: a label plus either a URL for the
// Fetcher or an already parsed document.
type Source struct {
	Label    string
	URL      string
	Document *goquery.Document
}

// Page is a fetched and parsed season listing.
type Page struct {
	Document *goquery.Document
	URL      string
	Engine   string
}

// Fetcher loads the listing page of one season. Retries, user agents and
// anti-bot handling are its own business; an error means it gave up.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) (*Page, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, src Source) (*Page, error)

func (f FetcherFunc) Fetch(ctx context.Context, src Source) (*Page, error) { return f(ctx, src) }

// Result is the outcome of a multi-season run.
type Result struct {
	// Records holds every record, season-major and row-minor.
	Records []models.MatchRecord

	// Seasons reports each season in input order. Seasons not reached
	// because the run was interrupted are absent.
	Seasons []models.SeasonReport

	// Layout is the row layout used for the session. It stays LayoutAuto
	// when no document was ever fetched.
	Layout extract.Layout

	// Interrupted is set when the caller's context ended between seasons.
	Interrupted bool
}

// Empty reports whether the run produced no data at all.
func (r *Result) Empty() bool { return len(r.Records) == 0 }

// Aggregator runs the season collector over several seasons, strictly one
// after the other.
type Aggregator struct {
	fetcher  Fetcher
	pacer    Pacer
	layout   extract.Layout
	dedupe   bool
	progress func(done, total int, report models.SeasonReport)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPacer replaces the default 2–5 s pause between season fetches.
func WithPacer(p Pacer) Option {
	return func(a *Aggregator) { a.pacer = p }
}

// WithLayout forces a row layout instead of probing the first document.
func WithLayout(l extract.Layout) Option {
	return func(a *Aggregator) { a.layout = l }
}

// WithDedupe toggles in-season duplicate removal (default on).
func WithDedupe(on bool) Option {
	return func(a *Aggregator) { a.dedupe = on }
}

// WithProgress registers a callback invoked after each season.
func WithProgress(fn func(done, total int, report models.SeasonReport)) Option {
	return func(a *Aggregator) { a.progress = fn }
}

// NewAggregator creates an Aggregator fetching pages through f.
func NewAggregator(f Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher: f,
		pacer:   DefaultPacer(),
		layout:  extract.LayoutAuto,
		dedupe:  true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run collects every source in order and concatenates the records.
//
// A season whose fetch fails, or that yields nothing, contributes zero
// records and the run moves on. The context is only consulted between
// seasons; when it ends the records gathered so far are returned with
// Interrupted set.
func (a *Aggregator) Run(ctx context.Context, sources []Source) *Result {
	res := &Result{
		Records: []models.MatchRecord{},
		Seasons: make([]models.SeasonReport, 0, len(sources)),
		Layout:  a.layout,
	}
	var collector *Collector
	if a.layout != extract.LayoutAuto {
		collector = NewCollector(a.layout, a.dedupe)
	}

	fetched := false
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			res.Interrupted = true
			break
		}
		if src.Document == nil && fetched {
			slog.Debug("pacing before next season", "season", src.Label)
			if err := a.pacer.Wait(ctx); err != nil {
				res.Interrupted = true
				break
			}
		}

		slog.Info("collecting season", "season", src.Label, "index", i+1, "of", len(sources))
		start := time.Now()

		doc, report := a.load(ctx, src)
		if src.Document == nil {
			fetched = true
		}

		if doc != nil {
			if collector == nil {
				layout := extract.Probe(doc)
				slog.Info("layout selected", "layout", layout.String(), "season", src.Label)
				collector = NewCollector(layout, a.dedupe)
				res.Layout = layout
			}
			records, collected := collector.Collect(doc, src.Label)
			collected.URL = report.URL
			collected.EngineUsed = report.EngineUsed
			report = collected
			res.Records = append(res.Records, records...)
		}

		report.DurationMs = time.Since(start).Milliseconds()
		res.Seasons = append(res.Seasons, report)
		if a.progress != nil {
			a.progress(i+1, len(sources), report)
		}
	}

	if res.Empty() {
		slog.Warn("no data retrieved", "seasons", len(sources), "interrupted", res.Interrupted)
	} else {
		slog.Info("aggregation complete", "records", len(res.Records),
			"seasons", len(res.Seasons), "interrupted", res.Interrupted)
	}
	return res
}

// load returns the season's document, fetching it when the source does not
// carry one. A fetch failure yields a nil document and a report carrying
// the error text.
func (a *Aggregator) load(ctx context.Context, src Source) (*goquery.Document, models.SeasonReport) {
	report := models.SeasonReport{Label: src.Label, URL: src.URL}
	if src.Document != nil {
		return src.Document, report
	}
	if a.fetcher == nil {
		report.FetchError = "no fetcher configured"
		return nil, report
	}

	page, err := a.fetcher.Fetch(ctx, src)
	if err != nil {
		slog.Warn("season fetch failed, continuing with next season",
			"season", src.Label, "url", src.URL, "error", err)
		report.FetchError = err.Error()
		return nil, report
	}
	if page == nil || page.Document == nil {
		report.FetchError = "fetcher returned no document"
		return nil, report
	}
	if page.URL != "" {
		report.URL = page.URL
	}
	report.EngineUsed = page.Engine
	return page.Document, report
}
