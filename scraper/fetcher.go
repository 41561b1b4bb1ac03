package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/use-agent/footyscrape/config"
	"github.com/use-agent/footyscrape/engine"
	"github.com/use-agent/footyscrape/models"
	"github.com/use-agent/footyscrape/season"
)

// Backend loads one page. *engine.Dispatcher satisfies it.
type Backend interface {
	Dispatch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error)
}

// BackendFunc adapts a single fetch function, such as a BrowserEngine's
// Fetch, to Backend.
type BackendFunc func(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error)

func (f BackendFunc) Dispatch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	return f(ctx, req)
}

// SeasonFetcher implements season.Fetcher on top of a Backend. Each
// attempt waits on the politeness limiter, sends a user agent picked from
// the configured pool and parses the page with goquery. Failed attempts
// are retried with jittered exponential backoff.
type SeasonFetcher struct {
	backend    Backend
	cfg        config.FetcherConfig
	baseURL    string
	timeout    time.Duration
	stealth    bool
	limiter    *rate.Limiter
	pickAgent  func(pool []string) string
	newBackOff func() backoff.BackOff
}

// FetcherOption configures a SeasonFetcher.
type FetcherOption func(*SeasonFetcher)

// WithBaseURL sets the league page used to derive season URLs.
func WithBaseURL(u string) FetcherOption {
	return func(f *SeasonFetcher) { f.baseURL = u }
}

// WithTimeout sets the per-attempt deadline.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *SeasonFetcher) { f.timeout = d }
}

// WithStealth overrides the configured stealth flag.
func WithStealth(on bool) FetcherOption {
	return func(f *SeasonFetcher) { f.stealth = on }
}

// WithAgentPicker replaces random user-agent selection.
func WithAgentPicker(pick func(pool []string) string) FetcherOption {
	return func(f *SeasonFetcher) { f.pickAgent = pick }
}

// WithBackOff replaces the retry policy. The attempt cap still applies.
func WithBackOff(newBackOff func() backoff.BackOff) FetcherOption {
	return func(f *SeasonFetcher) { f.newBackOff = newBackOff }
}

// WithLimiter shares a politeness limiter between fetchers, so concurrent
// runs against the same site stay under one budget.
func WithLimiter(l *rate.Limiter) FetcherOption {
	return func(f *SeasonFetcher) { f.limiter = l }
}

// NewLimiter returns the politeness limiter for cfg.
func NewLimiter(cfg config.FetcherConfig) *rate.Limiter {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(cfg.RequestsPerMinute / 60)
	}
	return rate.NewLimiter(limit, 1)
}

// NewSeasonFetcher creates a SeasonFetcher.
func NewSeasonFetcher(b Backend, cfg config.FetcherConfig, opts ...FetcherOption) *SeasonFetcher {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	f := &SeasonFetcher{
		backend:   b,
		cfg:       cfg,
		baseURL:   DefaultBaseURL,
		timeout:   60 * time.Second,
		stealth:   cfg.Stealth,
		limiter:   NewLimiter(cfg),
		pickAgent: randomAgent,
	}
	f.newBackOff = func() backoff.BackOff {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = cfg.BackoffInitial
		eb.MaxInterval = cfg.BackoffMax
		eb.RandomizationFactor = 0.5
		eb.MaxElapsedTime = 0
		return eb
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch loads the listing page of src. It gives up after the configured
// number of attempts, or at once when ctx ends.
func (f *SeasonFetcher) Fetch(ctx context.Context, src season.Source) (*season.Page, error) {
	target := SeasonURL(f.baseURL, src.Label, src.URL)
	attempt := 0

	op := func() (*season.Page, error) {
		attempt++
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		req := f.request(src.Label, target)
		slog.Debug("fetching season page", "season", src.Label, "url", target,
			"attempt", attempt, "user_agent", req.UserAgent)

		res, err := f.backend.Dispatch(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.HTML))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("parse season page: %w", err))
		}
		finalURL := res.FinalURL
		if finalURL == "" {
			finalURL = target
		}
		return &season.Page{Document: doc, URL: finalURL, Engine: res.EngineName}, nil
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("season fetch attempt failed, retrying",
			"season", src.Label, "attempt", attempt, "of", f.cfg.Attempts,
			"retry_in", wait, "error", err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(f.newBackOff(), uint64(f.cfg.Attempts-1)), ctx)
	page, err := backoff.RetryNotifyWithData(op, b, notify)
	if err != nil {
		code := models.ErrCodeFetchFailed
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			code = models.ErrCodeTimeout
		} else if errors.Is(err, engine.ErrNotReady) {
			code = models.ErrCodeNotReady
		}
		return nil, models.NewScrapeError(code,
			fmt.Sprintf("season %s: gave up after %d attempt(s)", src.Label, attempt), err)
	}
	return page, nil
}

func (f *SeasonFetcher) request(label, target string) *engine.FetchRequest {
	headers := map[string]string{
		"Accept-Language": "en-US,en;q=0.5",
		"DNT":             "1",
	}
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		headers["Referer"] = u.Scheme + "://" + u.Host + "/"
	}
	return &engine.FetchRequest{
		Season:           label,
		URL:              target,
		Headers:          headers,
		Timeout:          f.timeout,
		Stealth:          f.stealth,
		UserAgent:        f.pickAgent(f.cfg.UserAgents),
		ReadySelector:    f.cfg.ReadySelector,
		LoadMoreSelector: f.cfg.LoadMoreSelector,
		MaxLoadMore:      f.cfg.MaxLoadMore,
	}
}

func randomAgent(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.IntN(len(pool))]
}
