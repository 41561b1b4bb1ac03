package models

// Job statuses.
const (
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobEmpty      = "empty"
	JobFailed     = "failed"
)

// JobResponse is the immediate response for POST /api/v1/jobs.
type JobResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Seasons int    `json:"seasons"`
}

// JobStatusResponse is the response for GET /api/v1/jobs/:id.
type JobStatusResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Completed int             `json:"completed"`
	Seasons   int             `json:"seasons"`
	Result    *ScrapeResponse `json:"result,omitempty"`
}

// Job tracks an in-progress asynchronous aggregation.
type Job struct {
	ID        string
	Status    string
	Seasons   int
	Completed int
	Result    *ScrapeResponse
	CreatedAt int64 // unix timestamp
}
