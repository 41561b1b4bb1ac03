package main

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/footyscrape/api"
	"github.com/use-agent/footyscrape/api/handler"
	"github.com/use-agent/footyscrape/config"
	"github.com/use-agent/footyscrape/demo"
	"github.com/use-agent/footyscrape/models"
	"github.com/use-agent/footyscrape/season"
)

func newTestClient(t *testing.T) *client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := config.Load()
	cfg.Server.Mode = gin.TestMode
	cfg.Auth.Enabled = true
	cfg.Auth.APIKeys = []string{"k"}
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.Burst = 1000

	router := api.NewRouter(ctx, api.Services{
		Runner: &handler.Runner{
			NewFetcher: func(*models.ScrapeRequest) season.Fetcher { return demo.Fetcher{} },
			Pacer:      season.NoPacer{},
		},
		Jobs: handler.NewJobStore(ctx, time.Hour),
	}, cfg, time.Now())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	c := newClient(srv.URL, "k")
	c.pollTick = 10 * time.Millisecond
	return c
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestScrapeSeasons(t *testing.T) {
	c := newTestClient(t)
	res, err := handleScrapeSeasons(c)(context.Background(), call(map[string]any{
		"seasons": []any{"2023/2024", "1999/2000"},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	out := text(t, res)
	assert.Contains(t, out, "completed, 4 records from 2/2 seasons (layout position)")
	assert.Contains(t, out, "- 2023/2024: 4 matches")
	assert.Contains(t, out, "- 1999/2000: 0 matches (fetch failed:")
	assert.Contains(t, out, "Raja Casablanca")
}

func TestScrapeSeasons_MissingSeasons(t *testing.T) {
	res, err := handleScrapeSeasons(newTestClient(t))(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestScrapeSeasons_BadKey(t *testing.T) {
	c := newTestClient(t)
	c.apiKey = "wrong"
	res, err := handleScrapeSeasons(c)(context.Background(), call(map[string]any{
		"seasons": []any{"2023/2024"},
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Contains(t, text(t, res), models.ErrCodeUnauthorized)
}

func TestInspectPage_NotServed(t *testing.T) {
	// The test API has no inspector, so the route is absent.
	res, err := handleInspectPage(newTestClient(t))(context.Background(), call(map[string]any{
		"url": "https://example.com",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
