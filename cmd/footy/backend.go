package main

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/footyscrape/config"
	"github.com/use-agent/footyscrape/engine"
	"github.com/use-agent/footyscrape/scraper"
)

// backend owns the fetch engines of one process.
type backend struct {
	cfg        *config.Config
	scraper    *scraper.Scraper // nil when running without a browser
	dispatcher *engine.Dispatcher
	limiter    *rate.Limiter
}

// newBackend wires the engines. With withBrowser false only the HTTP engine
// runs, which is enough for pages that are not behind a bot check.
func newBackend(cfg *config.Config, withBrowser bool) (*backend, error) {
	b := &backend{cfg: cfg, limiter: scraper.NewLimiter(cfg.Fetcher)}

	var engines []engine.Engine
	delays := cfg.Engine.EscalationDelays

	if withBrowser {
		sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
		if err != nil {
			return nil, err
		}
		b.scraper = sc
	}

	switch {
	case b.scraper == nil:
		engines = []engine.Engine{engine.NewHTTPEngine()}
	case cfg.Engine.EnableMultiEngine:
		engines = []engine.Engine{
			engine.NewHTTPEngine(),
			b.scraper.Engine(false),
			b.scraper.Engine(true),
		}
	default:
		engines = []engine.Engine{b.scraper.Engine(cfg.Fetcher.Stealth)}
		delays = nil
	}

	b.dispatcher = engine.NewDispatcher(engines, delays, engine.NewRouteMemory(cfg.Engine.MemoryTTL))
	slog.Info("fetch engines ready",
		"engines", b.dispatcher.EngineNames(),
		"delays", delays,
		"browser", b.scraper != nil,
	)
	return b, nil
}

// seasonFetcher builds a fetcher sharing the process-wide politeness budget.
func (b *backend) seasonFetcher(timeout time.Duration, stealth bool) *scraper.SeasonFetcher {
	return scraper.NewSeasonFetcher(b.dispatcher, b.cfg.Fetcher,
		scraper.WithBaseURL(b.cfg.Season.BaseURL),
		scraper.WithTimeout(timeout),
		scraper.WithStealth(stealth || b.cfg.Fetcher.Stealth),
		scraper.WithLimiter(b.limiter),
	)
}

func (b *backend) Close() {
	if b.scraper != nil {
		b.scraper.Close()
	}
}
