package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Fetcher.Attempts)
	assert.Equal(t, DefaultUserAgents, cfg.Fetcher.UserAgents)
	assert.Equal(t, []string{"2023/2024", "2022/2023", "2021/2022"}, cfg.Season.Seasons)
	assert.Equal(t, 2*time.Second, cfg.Season.PaceMin)
	assert.Equal(t, 5*time.Second, cfg.Season.PaceMax)
	assert.True(t, cfg.Season.Dedupe)
	assert.Equal(t, "auto", cfg.Season.Layout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FOOTY_SEASONS", "2022/2023, 2021/2022 ,")
	t.Setenv("FOOTY_FETCH_ATTEMPTS", "5")
	t.Setenv("FOOTY_DEDUPE", "false")
	t.Setenv("FOOTY_ESCALATION_DELAYS", "0s,1s,bogus")
	t.Setenv("FOOTY_RATE_RPS", "not-a-number")

	cfg := Load()
	assert.Equal(t, []string{"2022/2023", "2021/2022"}, cfg.Season.Seasons)
	assert.Equal(t, 5, cfg.Fetcher.Attempts)
	assert.False(t, cfg.Season.Dedupe)
	assert.Equal(t, []time.Duration{0, time.Second}, cfg.Engine.EscalationDelays)
	assert.Equal(t, 2.0, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FOOTY_PORT=9191\nFOOTY_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("FOOTY_LOG_LEVEL", "warn")
	// t.Setenv restores the variable afterwards; FOOTY_PORT is cleaned up
	// by hand since godotenv sets it directly.
	t.Cleanup(func() { os.Unsetenv("FOOTY_PORT") })

	require.NoError(t, LoadDotEnv(path))
	cfg := Load()
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level, "existing variables win")
}
