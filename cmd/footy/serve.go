package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/footyscrape/api"
	"github.com/use-agent/footyscrape/api/handler"
	"github.com/use-agent/footyscrape/cache"
	"github.com/use-agent/footyscrape/inspect"
	"github.com/use-agent/footyscrape/models"
	"github.com/use-agent/footyscrape/season"
	"github.com/use-agent/footyscrape/webhook"
)

func newServeCmd(a *app) *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), a, !noBrowser)
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "serve with the HTTP engine only")
	return cmd
}

func serve(parent context.Context, a *app, withBrowser bool) error {
	cfg := a.cfg
	slog.Info("footy starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxPages", cfg.Browser.MaxPages,
	)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := newBackend(cfg, withBrowser)
	if err != nil {
		slog.Error("failed to initialise fetch engines", "error", err)
		return err
	}
	defer b.Close()

	// jobs outlive their request but not the server
	jobsCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	defer cc.Close()

	svc := api.Services{
		Runner: &handler.Runner{
			NewFetcher: func(req *models.ScrapeRequest) season.Fetcher {
				timeout := min(time.Duration(req.Timeout)*time.Second, cfg.Scraper.MaxTimeout)
				return b.seasonFetcher(timeout, req.Stealth)
			},
			Pacer:   season.RandomPacer{Min: cfg.Season.PaceMin, Max: cfg.Season.PaceMax},
			BaseURL: cfg.Season.BaseURL,
		},
		Jobs:      handler.NewJobStore(jobsCtx, time.Hour),
		Cache:     cc,
		Inspector: inspect.New(b.dispatcher, cfg.Scraper.DefaultTimeout),
		Webhook:   webhook.New(),
	}
	if b.scraper != nil {
		svc.Pool = b.scraper
	}

	router := api.NewRouter(jobsCtx, svc, cfg, time.Now())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("HTTP server error", "error", err)
			return err
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give in-flight requests 5 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}
	cancelJobs()

	slog.Info("footy stopped")
	return nil
}
