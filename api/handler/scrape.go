package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/footyscrape/cache"
	"github.com/use-agent/footyscrape/export"
	"github.com/use-agent/footyscrape/models"
)

// Scrape returns a handler for POST /api/v1/scrape.
//
// Flow:
//  1. Parse & validate request, apply defaults.
//  2. Cache lookup when max_age > 0.
//  3. Aggregate every season in request order.
//  4. Store non-empty results, then respond as JSON, CSV or Markdown.
//
// A run that yields no records answers 200 with success=false and code
// NO_DATA, always as JSON.
func Scrape(run *Runner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeInvalidInput, err.Error()))
			return
		}
		req.Defaults()

		useCache := cc != nil && req.MaxAge > 0
		cacheKey := ""
		if useCache {
			cacheKey = cache.Key(req.Seasons, req.Layout, *req.Dedupe)
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				resp := *cached
				resp.CacheStatus = "hit"
				resp.Timing = models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}
				respond(c, req.Format, &resp)
				return
			}
		}

		resp, err := run.Run(c.Request.Context(), &req, nil)
		if err != nil {
			respondError(c, err)
			return
		}

		if useCache && resp.Success && !resp.Interrupted {
			cc.Set(cacheKey, resp)
			stored := *resp
			stored.CacheStatus = "miss"
			resp = &stored
		}
		resp.Timing = models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}

		respond(c, req.Format, resp)
	}
}

// respond writes resp in the requested format.
func respond(c *gin.Context, format string, resp *models.ScrapeResponse) {
	f, err := export.ParseFormat(format)
	if err != nil || f == export.FormatJSON || !resp.Success {
		c.JSON(http.StatusOK, resp)
		return
	}

	c.Header("Content-Type", f.ContentType())
	c.Header("X-Footy-Total", strconv.Itoa(resp.Total))
	if resp.CacheStatus != "" {
		c.Header("X-Footy-Cache", resp.CacheStatus)
	}
	c.Status(http.StatusOK)
	if err := export.Write(f, c.Writer, resp.Records); err != nil {
		// headers are already out; all that is left is to abort the body
		_ = c.Error(err)
		c.Abort()
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ErrorResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeFetchFailed,
		models.ErrCodeNotReady, models.ErrCodeInspectFailed:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeJobNotFound:
		return http.StatusNotFound // 404
	default:
		return http.StatusInternalServerError // 500
	}
}
