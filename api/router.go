// Package api exposes the scraper over HTTP.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/footyscrape/api/handler"
	"github.com/use-agent/footyscrape/api/middleware"
	"github.com/use-agent/footyscrape/cache"
	"github.com/use-agent/footyscrape/config"
	"github.com/use-agent/footyscrape/inspect"
	"github.com/use-agent/footyscrape/webhook"
)

// Services are the collaborators the handlers run on. Pool, Cache,
// Inspector and Webhook may be nil.
type Services struct {
	Runner    *handler.Runner
	Jobs      *handler.JobStore
	Pool      handler.PoolStater
	Cache     *cache.Cache
	Inspector *inspect.Inspector
	Webhook   *webhook.Notifier
}

// NewRouter creates a configured Gin engine with all routes and middleware.
// ctx bounds background sweeps.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is outside auth so monitoring probes always work.
func NewRouter(ctx context.Context, svc Services, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health, no auth required.
	v1.GET("/health", handler.Health(svc.Pool, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(middleware.NewLimiters(ctx, cfg.RateLimit)))

	protected.POST("/scrape", handler.Scrape(svc.Runner, svc.Cache))

	if svc.Jobs != nil {
		protected.POST("/jobs", handler.PostJob(svc.Runner, svc.Jobs, svc.Webhook))
		protected.GET("/jobs/:id", handler.GetJob(svc.Jobs))
	}

	if svc.Inspector != nil {
		protected.POST("/inspect", handler.Inspect(svc.Inspector))
	}

	return r
}
