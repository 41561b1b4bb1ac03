// Command footy-mcp exposes the footy API to MCP clients over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("FOOTY_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("FOOTY_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "FOOTY_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"footy",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	c := newClient(apiURL, apiKey)

	scrapeSeasonsTool := mcp.NewTool("scrape_seasons",
		mcp.WithDescription("Collect Botola Pro match results for one or more seasons and return them as a Markdown table in request order."),
		mcp.WithArray("seasons",
			mcp.Required(),
			mcp.Description("Season labels such as \"2023/2024\", in the order the records should appear"),
		),
		mcp.WithString("layout",
			mcp.Description("Row layout: 'auto' (default, probe the first page), 'position' (plain table cells) or 'selector' (FootyStats markup)"),
			mcp.Enum("auto", "position", "selector"),
		),
		mcp.WithBoolean("stealth",
			mcp.Description("Enable anti-bot evasions on the browser engines"),
		),
	)
	s.AddTool(scrapeSeasonsTool, handleScrapeSeasons(c))

	inspectPageTool := mcp.NewTool("inspect_page",
		mcp.WithDescription("Fetch a listing page and report its table structure, match-related classes and the row layout that would be used to read it."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to inspect"),
		),
		mcp.WithBoolean("stealth",
			mcp.Description("Enable anti-bot evasions on the browser engines"),
		),
	)
	s.AddTool(inspectPageTool, handleInspectPage(c))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
