// Package engine fetches listing pages through interchangeable engines
// raced by a Dispatcher.
package engine

import (
	"context"
	"net/http"
	"time"
)

// Engine names, cheapest first.
const (
	NameHTTP       = "http"
	NameRod        = "rod"
	NameRodStealth = "rod-stealth"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier (NameHTTP, NameRod, NameRodStealth).
	Name() string

	// Fetch retrieves the page content for the given request.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	// Season labels the request in logs. Engines do not read it.
	Season string

	URL     string
	Headers map[string]string
	Cookies []http.Cookie
	Timeout time.Duration
	Stealth bool

	// UserAgent overrides the engine's default user agent.
	UserAgent string

	// ReadySelector must match at least one element of the fetched
	// document, otherwise the fetch counts as failed. Challenge pages
	// answer 200 without the match table.
	ReadySelector string

	// LoadMoreSelector and MaxLoadMore drive the browser's "load more"
	// loop. Plain HTTP engines ignore them.
	LoadMoreSelector string
	MaxLoadMore      int
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}
