package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/use-agent/footyscrape/engine"
	"github.com/use-agent/footyscrape/models"
)

// BrowserEngine is the dispatcher rung that renders listings in the
// headless browser, runs the "load more" loop and only reports a page
// carrying the match table. The stealth variant always injects the stealth
// script.
type BrowserEngine struct {
	load    func(ctx context.Context, req *models.PageRequest) (*PageResult, error)
	stealth bool
}

// Engine returns a BrowserEngine backed by s.
func (s *Scraper) Engine(stealth bool) *BrowserEngine {
	return &BrowserEngine{load: s.LoadPage, stealth: stealth}
}

func (e *BrowserEngine) Name() string {
	if e.stealth {
		return engine.NameRodStealth
	}
	return engine.NameRod
}

func (e *BrowserEngine) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	res, err := e.load(ctx, e.pageRequest(req))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name(), err)
	}
	if err := engine.CheckReady(res.HTML, req.ReadySelector); err != nil {
		return nil, fmt.Errorf("%s: season %q after %d load-more clicks: %w",
			e.Name(), req.Season, res.LoadMoreClicks, err)
	}
	return &engine.FetchResult{
		HTML:       res.HTML,
		Title:      res.Title,
		StatusCode: res.StatusCode,
		FinalURL:   res.FinalURL,
		EngineName: e.Name(),
	}, nil
}

func (e *BrowserEngine) pageRequest(req *engine.FetchRequest) *models.PageRequest {
	headers := make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		headers[k] = v
	}
	if req.UserAgent != "" {
		headers["User-Agent"] = req.UserAgent
	}
	return &models.PageRequest{
		URL:              req.URL,
		Headers:          headers,
		Timeout:          int(req.Timeout / time.Second),
		Stealth:          req.Stealth || e.stealth,
		ReadySelector:    req.ReadySelector,
		LoadMoreSelector: req.LoadMoreSelector,
		MaxLoadMore:      req.MaxLoadMore,
		BlockAds:         true,
	}
}
