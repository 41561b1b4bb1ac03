package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/use-agent/footyscrape/models"
	"github.com/use-agent/footyscrape/webhook"
)

// JobStore holds in-flight and finished aggregation jobs. Finished jobs
// older than the retention are swept periodically.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job

	// ctx bounds every job run; cancelling it interrupts running jobs
	// between seasons.
	ctx       context.Context
	retention time.Duration
}

// NewJobStore creates a JobStore. Jobs run under ctx.
func NewJobStore(ctx context.Context, retention time.Duration) *JobStore {
	if retention <= 0 {
		retention = time.Hour
	}
	s := &JobStore{
		jobs:      make(map[string]*models.Job),
		ctx:       ctx,
		retention: retention,
	}
	go s.sweepLoop()
	return s
}

func (s *JobStore) create(seasons int) *models.Job {
	job := &models.Job{
		ID:        uuid.NewString(),
		Status:    models.JobProcessing,
		Seasons:   seasons,
		CreatedAt: time.Now().Unix(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job
}

// Get returns a snapshot of a job.
func (s *JobStore) Get(id string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	return *job, true
}

func (s *JobStore) update(id string, fn func(*models.Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}

func (s *JobStore) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *JobStore) sweep(now time.Time) {
	cutoff := now.Add(-s.retention).Unix()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if job.Status != models.JobProcessing && job.CreatedAt < cutoff {
			delete(s.jobs, id)
		}
	}
}

// PostJob returns a handler for POST /api/v1/jobs. It validates the
// request, registers a job and runs the aggregation in the background.
// notifier may be nil when webhooks are disabled.
func PostJob(run *Runner, store *JobStore, notifier *webhook.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.NewErrorResponse(models.ErrCodeInvalidInput, err.Error()))
			return
		}
		req.Defaults()

		job := store.create(len(req.Seasons))
		go runJob(run, store, notifier, job.ID, req)

		c.JSON(http.StatusAccepted, models.JobResponse{
			ID:      job.ID,
			Status:  job.Status,
			Seasons: job.Seasons,
		})
	}
}

// GetJob returns a handler for GET /api/v1/jobs/:id.
func GetJob(store *JobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, ok := store.Get(c.Param("id"))
		if !ok {
			respondError(c, models.NewScrapeError(models.ErrCodeJobNotFound, "job not found", nil))
			return
		}
		c.JSON(http.StatusOK, models.JobStatusResponse{
			ID:        job.ID,
			Status:    job.Status,
			Completed: job.Completed,
			Seasons:   job.Seasons,
			Result:    job.Result,
		})
	}
}

func runJob(run *Runner, store *JobStore, notifier *webhook.Notifier, id string, req models.ScrapeRequest) {
	progress := func(done, _ int, _ models.SeasonReport) {
		store.update(id, func(j *models.Job) { j.Completed = done })
	}

	resp, err := run.Run(store.ctx, &req, progress)
	if err != nil {
		var detail *models.ErrorDetail
		if se, ok := err.(*models.ScrapeError); ok {
			detail = se.ToDetail()
		} else {
			detail = &models.ErrorDetail{Code: models.ErrCodeInternal, Message: err.Error()}
		}
		resp = &models.ScrapeResponse{Error: detail}
	}

	status := models.JobCompleted
	switch {
	case err != nil:
		status = models.JobFailed
	case !resp.Success:
		status = models.JobEmpty
	}
	store.update(id, func(j *models.Job) {
		j.Status = status
		j.Result = resp
	})

	slog.Info("job finished",
		"id", id,
		"status", status,
		"records", resp.Total,
		"seasons", len(req.Seasons),
		"interrupted", resp.Interrupted,
	)

	if notifier == nil || req.WebhookURL == "" {
		return
	}
	event := webhook.EventScrapeCompleted
	if status != models.JobCompleted {
		event = webhook.EventScrapeFailed
	}
	notifier.DeliverAsync(req.WebhookURL, req.WebhookSecret, webhook.NewEvent(event, id, resp))
}
