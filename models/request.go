package models

// SeasonSource names one season to collect. URL is optional; when empty the
// fetcher derives it from the season label.
type SeasonSource struct {
	Label string `json:"label" binding:"required"`
	URL   string `json:"url,omitempty" binding:"omitempty,url"`
}

// ScrapeRequest is the payload for POST /api/v1/scrape and POST /api/v1/jobs.
type ScrapeRequest struct {
	// Seasons is the ordered list of seasons to collect. Output order
	// follows this order. Required.
	Seasons []SeasonSource `json:"seasons" binding:"required,min=1,max=20,dive"`

	// Layout forces the row layout: "position", "selector" or "auto".
	// Default: "auto" (probe the first fetched page).
	Layout string `json:"layout,omitempty" binding:"omitempty,oneof=auto position selector"`

	// Format controls the response body for the synchronous endpoint.
	// Allowed: "json" (default), "csv", "markdown".
	Format string `json:"format,omitempty" binding:"omitempty,oneof=json csv markdown"`

	// Dedupe drops repeated fixtures inside one season. Default: true.
	Dedupe *bool `json:"dedupe,omitempty"`

	// Stealth enables anti-bot-detection evasions on the browser engines.
	Stealth bool `json:"stealth,omitempty"`

	// Timeout is the per-season fetch deadline in seconds.
	// Default: 60. Max: 180.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=180"`

	// MaxAge enables the result cache when > 0 (milliseconds).
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// WebhookURL receives the job result (jobs endpoint only).
	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Layout == "" {
		r.Layout = "auto"
	}
	if r.Format == "" {
		r.Format = "json"
	}
	if r.Dedupe == nil {
		t := true
		r.Dedupe = &t
	}
	if r.Timeout == 0 {
		r.Timeout = 60
	}
}

// InspectRequest is the payload for POST /api/v1/inspect.
type InspectRequest struct {
	URL     string `json:"url" binding:"required,url"`
	Stealth bool   `json:"stealth,omitempty"`
	Timeout int    `json:"timeout,omitempty" binding:"omitempty,min=1,max=180"`
}

// PageRequest is what the browser scraper needs to load one listing page.
type PageRequest struct {
	URL     string
	Headers map[string]string

	// Timeout is the deadline in seconds for the whole page load.
	Timeout int
	Stealth bool

	// ReadySelector is waited for after navigation. Empty means wait for
	// the DOM to settle.
	ReadySelector string

	// LoadMoreSelector is clicked repeatedly until it disappears or
	// MaxLoadMore clicks were made.
	LoadMoreSelector string
	MaxLoadMore      int

	BlockAds bool
}
