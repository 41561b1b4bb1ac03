package models

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	// Success indicates whether the run produced at least one record.
	Success bool `json:"success"`

	// Layout is the row layout the session used.
	Layout string `json:"layout,omitempty"`

	// Total is len(Records).
	Total int `json:"total"`

	Records []MatchRecord `json:"records"`

	// Seasons reports what happened to each requested season, in order.
	Seasons []SeasonReport `json:"seasons"`

	// Interrupted is set when the run was cancelled between seasons; the
	// records gathered up to that point are still returned.
	Interrupted bool `json:"interrupted,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// SeasonReport summarises the collection of one season.
type SeasonReport struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`

	// Rows is the number of row-shaped nodes seen in the document.
	Rows int `json:"rows"`

	// Matched is the number of records kept.
	Matched int `json:"matched"`

	// Duplicates is the number of repeated fixtures dropped.
	Duplicates int `json:"duplicates,omitempty"`

	// Skipped counts skipped rows per reason.
	Skipped map[string]int `json:"skipped,omitempty"`

	// FetchError is set when the fetcher could not deliver a document.
	FetchError string `json:"fetch_error,omitempty"`

	// EngineUsed records which fetch engine produced the page.
	EngineUsed string `json:"engine_used,omitempty"`

	DurationMs int64 `json:"duration_ms"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}

// ErrorResponse is the body of every rejected request.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// NewErrorResponse builds an ErrorResponse.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Error: &ErrorDetail{Code: code, Message: message}}
}
