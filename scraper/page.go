package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/footyscrape/models"
)

// LoadPage renders one listing page.
//
// Lifecycle:
//
//  1. Timeout guard: hard deadline on the entire operation.
//  2. Acquire a tab from the pool; the deferred cleanup navigates it to
//     about:blank and returns it.
//  3. Stealth JS, extra headers and the hijack router are installed before
//     navigation; they only affect navigations that start afterwards.
//  4. Navigate, wait for the ready selector (bounded by ReadyTimeout).
//  5. Click "load more" until it disappears or MaxLoadMore is reached.
//  6. Capture the rendered HTML.
func (s *Scraper) LoadPage(ctx context.Context, req *models.PageRequest) (*PageResult, error) {
	timeout := time.Duration(req.Timeout) * time.Second
	if timeout <= 0 {
		timeout = s.scraperCfg.DefaultTimeout
	}
	if timeout > s.scraperCfg.MaxTimeout {
		timeout = s.scraperCfg.MaxTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, err := s.pagePool.Get(func() (*rod.Page, error) {
		return s.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to acquire page from pool", err)
	}
	// Uses the page without the request context so cleanup succeeds even
	// after the deadline.
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		s.pagePool.Put(page)
	}()

	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	applyHeaders(page, req)

	router := setupHijack(page, s.scraperCfg.BlockedResourceTypes, req.BlockAds)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if err := p.Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to season page failed")
	}

	if err := s.waitReady(p, req.ReadySelector); err != nil {
		if ctx.Err() != nil {
			return nil, categorizeError(ctx.Err(), "page load timed out")
		}
		// The HTML is still captured; the engine decides whether a page
		// without the selector counts.
		slog.Debug("ready selector not found", "url", req.URL, "selector", req.ReadySelector, "error", err)
	}

	clicks := 0
	if req.LoadMoreSelector != "" && req.MaxLoadMore > 0 {
		clicks = s.loadMore(ctx, p, req.LoadMoreSelector, req.MaxLoadMore)
	}

	rawHTML, err := p.HTML()
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}

	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	return &PageResult{
		HTML:           rawHTML,
		Title:          evalStringOrEmpty(p, `() => document.title`),
		StatusCode:     navigationStatus(p),
		FinalURL:       finalURL,
		LoadMoreClicks: clicks,
	}, nil
}

// waitReady waits for selector, or for the DOM to settle when selector is
// empty.
func (s *Scraper) waitReady(p *rod.Page, selector string) error {
	if selector == "" {
		return p.WaitDOMStable(300*time.Millisecond, 0.1)
	}
	wait := s.scraperCfg.ReadyTimeout
	if wait <= 0 {
		wait = 20 * time.Second
	}
	_, err := p.Timeout(wait).Element(selector)
	return err
}

// loadMore clicks selector until it is gone, limit clicks were made or ctx
// ends. It returns the number of clicks that went through.
func (s *Scraper) loadMore(ctx context.Context, p *rod.Page, selector string, limit int) int {
	clicks := 0
	for clicks < limit {
		has, el, err := p.Has(selector)
		if err != nil || !has {
			break
		}
		_ = el.ScrollIntoView()
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			// Overlays intercept real clicks; a DOM click still fires the
			// handler.
			if _, jsErr := el.Eval(`() => this.click()`); jsErr != nil {
				slog.Debug("load more click failed", "clicks", clicks, "error", jsErr)
				break
			}
		}
		clicks++

		if !sleepCtx(ctx, s.scraperCfg.LoadMorePause) {
			break
		}
		_ = p.WaitDOMStable(300*time.Millisecond, 0.1)
	}
	if clicks > 0 {
		slog.Info("load more finished", "clicks", clicks, "limit", limit)
	}
	return clicks
}

func applyHeaders(page *rod.Page, req *models.PageRequest) {
	extra := make(map[string]string, len(req.Headers)+1)
	if _, ok := req.Headers["Referer"]; !ok {
		if u, err := url.Parse(req.URL); err == nil && u.Host != "" {
			extra["Referer"] = u.Scheme + "://" + u.Host + "/"
		}
	}
	for k, v := range req.Headers {
		if k == "User-Agent" {
			_ = proto.NetworkSetUserAgentOverride{UserAgent: v}.Call(page)
			continue
		}
		extra[k] = v
	}
	if len(extra) > 0 {
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(extra)}.Call(page)
	}
}

// navigationStatus reads the HTTP status of the main document without CDP
// network listeners, which conflict with the hijack router.
func navigationStatus(p *rod.Page) int {
	res, err := p.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to proto.NetworkHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors so the API layer
// can map them to HTTP status codes.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
