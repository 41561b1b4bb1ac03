// Package config loads runtime settings from FOOTY_* environment variables,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Fetcher   FetcherConfig
	Season    SeasonConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
	Engine    EngineConfig
}

// EngineConfig controls the multi-engine racing dispatcher.
type EngineConfig struct {
	// EnableMultiEngine toggles the HTTP-first dispatcher. When off every
	// page goes straight to the browser.
	EnableMultiEngine bool // default: true

	// EscalationDelays is the staged start delay for each engine tier.
	EscalationDelays []time.Duration // default: [0s, 3s, 8s]

	// HTTPTimeout is the deadline for the pure HTTP engine.
	HTTPTimeout time.Duration // default: 15s

	// MemoryTTL is how long the dispatcher remembers, per listing route, the
	// winning engine and the engines that were served a bot check.
	MemoryTTL time.Duration // default: 1h
}

// CacheConfig controls the scrape result cache.
type CacheConfig struct {
	MaxEntries int           // default: 100
	TTL        time.Duration // default: 30m
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	Headless     bool // default: true
	MaxPages     int  // default: 4
	DefaultProxy string
	NoSandbox    bool // default: false
	BrowserBin   string
}

// ScraperConfig controls the browser page workflow.
type ScraperConfig struct {
	// DefaultTimeout is the per-page timeout.
	DefaultTimeout time.Duration // default: 60s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 180s

	// ReadyTimeout bounds the wait for the match table to appear.
	ReadyTimeout time.Duration // default: 20s

	// LoadMorePause is the pause after each "load more" click.
	LoadMorePause time.Duration // default: 2s

	// BlockedResourceTypes lists resource types to block.
	BlockedResourceTypes []string
}

// FetcherConfig controls how one season page is fetched.
type FetcherConfig struct {
	// UserAgents is the pool rotated across attempts.
	UserAgents []string

	// Attempts is the number of fetch attempts per season.
	Attempts int // default: 3

	// BackoffInitial and BackoffMax bound the exponential retry delay.
	BackoffInitial time.Duration // default: 2s
	BackoffMax     time.Duration // default: 10s

	// RequestsPerMinute caps outgoing page fetches.
	RequestsPerMinute float64 // default: 20

	// ReadySelector must match for a page to count as loaded.
	ReadySelector string // default: "table.matches-table tbody tr, table tr td"

	// LoadMoreSelector is clicked until it disappears or MaxLoadMore is hit.
	LoadMoreSelector string // default: "div.load_more a"
	MaxLoadMore      int    // default: 20

	// Stealth forces stealth injection on browser fetches.
	Stealth bool // default: true
}

// SeasonConfig controls which seasons are collected and how.
type SeasonConfig struct {
	// BaseURL is the league page; season listings live under /matches.
	BaseURL string // default: "https://footystats.org/morocco/botola-pro"

	// Seasons are the default labels to collect, in order.
	Seasons []string // default: 2023/2024, 2022/2023, 2021/2022

	// Layout is "auto", "position" or "selector".
	Layout string // default: "auto"

	// PaceMin and PaceMax bound the random pause between season fetches.
	PaceMin time.Duration // default: 2s
	PaceMax time.Duration // default: 5s

	// Dedupe drops fixtures rendered twice in one season.
	Dedupe bool // default: true
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool // default: true
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting of the API.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 2
	Burst             int     // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultUserAgents is the built-in user-agent pool.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
}

// LoadDotEnv reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("FOOTY_HOST", "0.0.0.0"),
			Port: envIntOr("FOOTY_PORT", 8080),
			Mode: envOr("FOOTY_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("FOOTY_HEADLESS", true),
			MaxPages:     envIntOr("FOOTY_MAX_PAGES", 4),
			DefaultProxy: os.Getenv("FOOTY_PROXY"),
			NoSandbox:    envBoolOr("FOOTY_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("FOOTY_BROWSER_BIN"),
		},
		Scraper: ScraperConfig{
			DefaultTimeout: envDurationOr("FOOTY_DEFAULT_TIMEOUT", 60*time.Second),
			MaxTimeout:     envDurationOr("FOOTY_MAX_TIMEOUT", 180*time.Second),
			ReadyTimeout:   envDurationOr("FOOTY_READY_TIMEOUT", 20*time.Second),
			LoadMorePause:  envDurationOr("FOOTY_LOAD_MORE_PAUSE", 2*time.Second),
			BlockedResourceTypes: envSliceOr("FOOTY_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
		},
		Fetcher: FetcherConfig{
			UserAgents:        envSliceOr("FOOTY_USER_AGENTS", DefaultUserAgents),
			Attempts:          envIntOr("FOOTY_FETCH_ATTEMPTS", 3),
			BackoffInitial:    envDurationOr("FOOTY_BACKOFF_INITIAL", 2*time.Second),
			BackoffMax:        envDurationOr("FOOTY_BACKOFF_MAX", 10*time.Second),
			RequestsPerMinute: envFloatOr("FOOTY_FETCH_RPM", 20),
			ReadySelector:     envOr("FOOTY_READY_SELECTOR", "table.matches-table tbody tr, table tr td"),
			LoadMoreSelector:  envOr("FOOTY_LOAD_MORE_SELECTOR", "div.load_more a"),
			MaxLoadMore:       envIntOr("FOOTY_MAX_LOAD_MORE", 20),
			Stealth:           envBoolOr("FOOTY_STEALTH", true),
		},
		Season: SeasonConfig{
			BaseURL: envOr("FOOTY_BASE_URL", "https://footystats.org/morocco/botola-pro"),
			Seasons: envSliceOr("FOOTY_SEASONS", []string{"2023/2024", "2022/2023", "2021/2022"}),
			Layout:  envOr("FOOTY_LAYOUT", "auto"),
			PaceMin: envDurationOr("FOOTY_PACE_MIN", 2*time.Second),
			PaceMax: envDurationOr("FOOTY_PACE_MAX", 5*time.Second),
			Dedupe:  envBoolOr("FOOTY_DEDUPE", true),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("FOOTY_AUTH_ENABLED", true),
			APIKeys: envSliceOr("FOOTY_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("FOOTY_RATE_RPS", 2.0),
			Burst:             envIntOr("FOOTY_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("FOOTY_CACHE_MAX_ENTRIES", 100),
			TTL:        envDurationOr("FOOTY_CACHE_TTL", 30*time.Minute),
		},
		Log: LogConfig{
			Level:  envOr("FOOTY_LOG_LEVEL", "info"),
			Format: envOr("FOOTY_LOG_FORMAT", "json"),
		},
		Engine: EngineConfig{
			EnableMultiEngine: envBoolOr("FOOTY_MULTI_ENGINE", true),
			EscalationDelays:  envDurationSliceOr("FOOTY_ESCALATION_DELAYS", []time.Duration{0, 3 * time.Second, 8 * time.Second}),
			HTTPTimeout:       envDurationOr("FOOTY_HTTP_TIMEOUT", 15*time.Second),
			MemoryTTL:         envDurationOr("FOOTY_ENGINE_MEMORY_TTL", time.Hour),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
