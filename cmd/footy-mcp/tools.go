package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/footyscrape/api/handler"
	"github.com/use-agent/footyscrape/export"
	"github.com/use-agent/footyscrape/models"
)

// client talks to the footy HTTP API.
type client struct {
	http     *http.Client
	apiURL   string
	apiKey   string
	pollTick time.Duration
}

func newClient(apiURL, apiKey string) *client {
	return &client{
		http:     &http.Client{Timeout: 120 * time.Second},
		apiURL:   strings.TrimRight(apiURL, "/"),
		apiKey:   apiKey,
		pollTick: 2 * time.Second,
	}
}

// do sends a request to the API and returns the response body.
func (c *client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJob polls a job until its status is no longer "processing" or ctx
// is cancelled.
func (c *client) pollJob(ctx context.Context, id string) (*models.JobStatusResponse, error) {
	ticker := time.NewTicker(c.pollTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			body, err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+id, nil)
			if err != nil {
				return nil, err
			}
			var status models.JobStatusResponse
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse job status: %w", err)
			}
			if status.Status != models.JobProcessing {
				return &status, nil
			}
		}
	}
}

func handleScrapeSeasons(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		labels, err := request.RequireStringSlice("seasons")
		if err != nil || len(labels) == 0 {
			return mcp.NewToolResultError("seasons is required and must be an array of strings"), nil
		}

		req := models.ScrapeRequest{
			Layout:  request.GetString("layout", ""),
			Stealth: request.GetBool("stealth", false),
		}
		for _, l := range labels {
			req.Seasons = append(req.Seasons, models.SeasonSource{Label: l})
		}

		// Multi-season runs take minutes; go through the jobs endpoint.
		body, err := c.do(ctx, http.MethodPost, "/api/v1/jobs", req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var created models.JobResponse
		if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
			return mcp.NewToolResultError("job creation failed: " + apiError(body)), nil
		}

		status, err := c.pollJob(ctx, created.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling job failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatScrape(status)), nil
	}
}

func handleInspectPage(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		body, err := c.do(ctx, http.MethodPost, "/api/v1/inspect", models.InspectRequest{
			URL:     url,
			Stealth: request.GetBool("stealth", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp handler.InspectResponse
		if err := json.Unmarshal(body, &resp); err != nil || !resp.Success || resp.Report == nil {
			return mcp.NewToolResultError("inspect failed: " + apiError(body)), nil
		}
		out, err := json.MarshalIndent(resp.Report, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode report: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// formatScrape renders a finished job as a summary line, one line per
// season and a Markdown table of the records.
func formatScrape(status *models.JobStatusResponse) string {
	var sb strings.Builder
	res := status.Result
	if res == nil {
		fmt.Fprintf(&sb, "Job %s: %s\n", status.ID, status.Status)
		return sb.String()
	}

	fmt.Fprintf(&sb, "Job %s: %s, %d records from %d/%d seasons (layout %s)\n\n",
		status.ID, status.Status, res.Total, status.Completed, status.Seasons, res.Layout)
	for _, s := range res.Seasons {
		line := fmt.Sprintf("- %s: %d matches", s.Label, s.Matched)
		if s.FetchError != "" {
			line += " (fetch failed: " + s.FetchError + ")"
		}
		sb.WriteString(line + "\n")
	}
	if res.Error != nil {
		fmt.Fprintf(&sb, "\n[%s] %s\n", res.Error.Code, res.Error.Message)
	}
	if len(res.Records) > 0 {
		sb.WriteString("\n")
		if err := export.WriteMarkdown(&sb, res.Records); err != nil {
			fmt.Fprintf(&sb, "render table: %v\n", err)
		}
	}
	return sb.String()
}

// apiError extracts the error message of an API error body.
func apiError(body []byte) string {
	var e models.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != nil {
		return fmt.Sprintf("[%s] %s", e.Error.Code, e.Error.Message)
	}
	return strings.TrimSpace(string(body))
}
