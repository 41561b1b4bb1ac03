package handler

import (
	"context"
	"time"

	"github.com/use-agent/footyscrape/extract"
	"github.com/use-agent/footyscrape/models"
	"github.com/use-agent/footyscrape/scraper"
	"github.com/use-agent/footyscrape/season"
)

// FetcherFactory builds the season fetcher serving one request, so the
// request's timeout and stealth flag reach the engines.
type FetcherFactory func(req *models.ScrapeRequest) season.Fetcher

// Runner turns a ScrapeRequest into an aggregation run.
type Runner struct {
	NewFetcher FetcherFactory

	// Pacer waits between season fetches. Nil means the 2-5s default.
	Pacer season.Pacer

	// BaseURL is used to derive season URLs for reports.
	BaseURL string
}

// Run collects the requested seasons. The only error is invalid input;
// fetch failures and empty seasons are reported inside the response.
func (r *Runner) Run(ctx context.Context, req *models.ScrapeRequest,
	progress func(done, total int, report models.SeasonReport)) (*models.ScrapeResponse, error) {
	start := time.Now()

	layout, err := extract.ParseLayout(req.Layout)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, err.Error(), err)
	}

	baseURL := r.BaseURL
	if baseURL == "" {
		baseURL = scraper.DefaultBaseURL
	}
	sources := make([]season.Source, len(req.Seasons))
	for i, s := range req.Seasons {
		sources[i] = season.Source{
			Label: s.Label,
			URL:   scraper.SeasonURL(baseURL, s.Label, s.URL),
		}
	}

	opts := []season.Option{
		season.WithLayout(layout),
		season.WithDedupe(req.Dedupe == nil || *req.Dedupe),
	}
	if r.Pacer != nil {
		opts = append(opts, season.WithPacer(r.Pacer))
	}
	if progress != nil {
		opts = append(opts, season.WithProgress(progress))
	}

	res := season.NewAggregator(r.NewFetcher(req), opts...).Run(ctx, sources)

	resp := &models.ScrapeResponse{
		Success:     !res.Empty(),
		Layout:      res.Layout.String(),
		Total:       len(res.Records),
		Records:     res.Records,
		Seasons:     res.Seasons,
		Interrupted: res.Interrupted,
		Timing:      models.TimingInfo{TotalMs: time.Since(start).Milliseconds()},
	}
	if res.Empty() {
		resp.Error = &models.ErrorDetail{
			Code:    models.ErrCodeNoData,
			Message: "no data retrieved from any season",
		}
	}
	return resp, nil
}
