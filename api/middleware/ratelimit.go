package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/use-agent/footyscrape/config"
	"github.com/use-agent/footyscrape/models"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiters hands out one token bucket per caller identity.
type Limiters struct {
	cfg config.RateLimitConfig

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

// NewLimiters creates an empty limiter set. Entries idle for an hour are
// swept every five minutes until ctx ends.
func NewLimiters(ctx context.Context, cfg config.RateLimitConfig) *Limiters {
	l := &Limiters{cfg: cfg, entries: make(map[string]*limiterEntry)}
	go l.sweep(ctx)
	return l
}

func (l *Limiters) get(identity string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[identity]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), max(l.cfg.Burst, 1)),
		}
		l.entries[identity] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

func (l *Limiters) sweep(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			cutoff := now.Add(-time.Hour)
			l.mu.Lock()
			for id, e := range l.entries {
				if e.lastSeen.Before(cutoff) {
					delete(l.entries, id)
				}
			}
			l.mu.Unlock()
		}
	}
}

// RateLimit returns per-identity token-bucket middleware. The identity is
// the API key set by Auth, or the client IP when auth is off.
func RateLimit(l *Limiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetString(ContextKeyAPIKey)
		if identity == "" {
			identity = c.ClientIP()
		}

		limiter := l.get(identity)
		if !limiter.Allow() {
			if r := limiter.Limit(); r > 0 && r != rate.Inf {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/float64(r)))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.NewErrorResponse(
				models.ErrCodeRateLimited, "rate limit exceeded, please slow down"))
			return
		}

		c.Next()
	}
}
