package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/footyscrape/analysis"
	"github.com/use-agent/footyscrape/demo"
	"github.com/use-agent/footyscrape/export"
	"github.com/use-agent/footyscrape/extract"
	"github.com/use-agent/footyscrape/models"
	"github.com/use-agent/footyscrape/scraper"
	"github.com/use-agent/footyscrape/season"
)

var errNoData = errors.New("no data retrieved")

type scrapeOptions struct {
	seasons   []string
	urls      []string
	layout    string
	format    string
	output    string
	demo      bool
	delayMin  time.Duration
	delayMax  time.Duration
	noDedupe  bool
	stealth   bool
	timeout   time.Duration
	noBrowser bool
	preview   int
}

func newScrapeCmd(a *app) *cobra.Command {
	o := &scrapeOptions{}
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Collect match records for one or more seasons and save them",
		Example: `  footy scrape --season 2023/2024 --season 2022/2023 --format xlsx
  footy scrape --demo --output - --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runScrape(ctx, a, o, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&o.seasons, "season", "s", nil, "season label to collect, repeatable; output keeps this order (default from FOOTY_SEASONS)")
	f.StringSliceVar(&o.urls, "url", nil, "explicit listing URL for the season at the same position")
	f.StringVar(&o.layout, "layout", "", "row layout: auto, position or selector (default from FOOTY_LAYOUT)")
	f.StringVarP(&o.format, "format", "f", "csv", "output format: csv, json, xlsx or markdown")
	f.StringVarP(&o.output, "output", "o", "", "output file, - for stdout (default botola_matches_<timestamp>.<ext>)")
	f.BoolVar(&o.demo, "demo", false, "read the bundled sample pages instead of the network")
	f.DurationVar(&o.delayMin, "delay-min", 0, "minimum pause between season fetches (default from FOOTY_PACE_MIN)")
	f.DurationVar(&o.delayMax, "delay-max", 0, "maximum pause between season fetches (default from FOOTY_PACE_MAX)")
	f.BoolVar(&o.noDedupe, "no-dedupe", false, "keep fixtures rendered twice in one season")
	f.BoolVar(&o.stealth, "stealth", false, "force stealth on browser fetches")
	f.DurationVar(&o.timeout, "timeout", 60*time.Second, "per-season fetch deadline")
	f.BoolVar(&o.noBrowser, "no-browser", false, "fetch with the HTTP engine only")
	f.IntVar(&o.preview, "preview", 5, "records to print after collecting")
	return cmd
}

func runScrape(ctx context.Context, a *app, o *scrapeOptions, stdout, stderr io.Writer) error {
	cfg := a.cfg

	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}
	layout, err := extract.ParseLayout(firstNonEmpty(o.layout, cfg.Season.Layout))
	if err != nil {
		return err
	}

	labels := o.seasons
	if len(labels) == 0 {
		labels = cfg.Season.Seasons
		if o.demo {
			labels = demo.Seasons
		}
	}
	if len(o.urls) > len(labels) {
		return fmt.Errorf("%d --url values for %d seasons", len(o.urls), len(labels))
	}

	var (
		fetcher season.Fetcher
		pacer   season.Pacer
	)
	if o.demo {
		fetcher, pacer = demo.Fetcher{}, season.NoPacer{}
	} else {
		b, err := newBackend(cfg, !o.noBrowser)
		if err != nil {
			return err
		}
		defer b.Close()
		fetcher = b.seasonFetcher(o.timeout, o.stealth)
		pacer = season.RandomPacer{
			Min: durationOr(o.delayMin, cfg.Season.PaceMin),
			Max: durationOr(o.delayMax, cfg.Season.PaceMax),
		}
	}

	sources := make([]season.Source, len(labels))
	for i, l := range labels {
		explicit := ""
		if i < len(o.urls) {
			explicit = o.urls[i]
		}
		sources[i] = season.Source{Label: l, URL: scraper.SeasonURL(cfg.Season.BaseURL, l, explicit)}
	}

	agg := season.NewAggregator(fetcher,
		season.WithPacer(pacer),
		season.WithLayout(layout),
		season.WithDedupe(!o.noDedupe && cfg.Season.Dedupe),
		season.WithProgress(func(done, total int, rep models.SeasonReport) {
			line := fmt.Sprintf("[%d/%d] %s: %d matches", done, total, rep.Label, rep.Matched)
			if rep.FetchError != "" {
				line += " (fetch failed)"
			}
			fmt.Fprintln(stderr, line)
		}),
	)
	res := agg.Run(ctx, sources)

	if res.Interrupted {
		fmt.Fprintln(stderr, "Interrupted; keeping the records collected so far.")
	}
	if res.Empty() {
		fmt.Fprintln(stderr, "No data retrieved.")
		return errNoData
	}

	path, err := writeRecords(format, o.output, res.Records, stdout)
	if err != nil {
		return err
	}
	if path != "" {
		slog.Info("records saved", "path", path, "format", string(format), "records", len(res.Records))
		fmt.Fprintf(stderr, "Saved %d records to %s\n", len(res.Records), path)
	}

	// keep stdout clean when it carries the data
	report := stdout
	if o.output == "-" {
		report = stderr
	}
	if o.preview > 0 {
		analysis.RenderRecords(report, res.Records, o.preview)
	}
	analysis.RenderSummary(report, analysis.Summarize(res.Records))
	return nil
}

// writeRecords writes to stdout for "-", otherwise to a file, and returns
// the file path.
func writeRecords(f export.Format, output string, records []models.MatchRecord, stdout io.Writer) (string, error) {
	if output == "-" {
		return "", export.Write(f, stdout, records)
	}
	if output == "" {
		output = export.Filename(f, time.Now())
	}
	file, err := os.Create(output)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeExportFailed, "create "+output, err)
	}
	if err := export.Write(f, file, records); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", models.NewScrapeError(models.ErrCodeExportFailed, "close "+output, err)
	}
	return output, nil
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
