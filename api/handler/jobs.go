package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/export"
	"github.com/use-agent/harvest/listing"
	"github.com/use-agent/harvest/metrics"
	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/pipeline"
	"github.com/use-agent/harvest/webhook"
)

// job is one async harvest. Fields are guarded by mu; the records slice is
// only set once, when the job finishes.
type job struct {
	mu sync.RWMutex

	id         string
	status     string
	format     string
	result     *pipeline.Result
	err        *models.ErrorDetail
	createdAt  time.Time
	finishedAt time.Time
}

func (j *job) finish(res *pipeline.Result, err error, now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finishedAt = now
	if err != nil {
		j.status = models.JobFailed
		var se *models.ScrapeError
		if errors.As(err, &se) {
			j.err = se.ToDetail()
		} else {
			j.err = &models.ErrorDetail{Code: models.ErrCodeInternal, Message: err.Error()}
		}
		return
	}
	j.status = models.JobCompleted
	j.result = res
}

func (j *job) response(withRecords bool) models.JobResponse {
	j.mu.RLock()
	defer j.mu.RUnlock()
	resp := models.JobResponse{
		ID:        j.id,
		Status:    j.status,
		Error:     j.err,
		CreatedAt: j.createdAt.Unix(),
	}
	if !j.finishedAt.IsZero() {
		resp.FinishedAt = j.finishedAt.Unix()
	}
	if j.result != nil {
		resp.URL = j.result.URL
		resp.Total = len(j.result.Records)
		resp.Enriched = j.result.Stats.Enriched
		resp.Failed = j.result.Stats.Failed
		if withRecords {
			resp.Records = j.result.Records
		}
	}
	return resp
}

// JobStore holds in-flight and finished jobs. Finished jobs are dropped
// once they are older than the TTL.
type JobStore struct {
	jobs sync.Map // id -> *job
	ttl  time.Duration
	now  func() time.Time
}

// NewJobStore creates a store expiring finished jobs after ttl.
func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{ttl: ttl, now: time.Now}
}

func (s *JobStore) create(format string) *job {
	j := &job{
		id:        "harvest-" + randomID(),
		status:    models.JobRunning,
		format:    format,
		createdAt: s.now(),
	}
	s.jobs.Store(j.id, j)
	return j
}

func (s *JobStore) get(id string) (*job, bool) {
	v, ok := s.jobs.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*job), true
}

// Sweep removes jobs that finished more than the TTL ago and returns how many.
func (s *JobStore) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	s.jobs.Range(func(key, value any) bool {
		j := value.(*job)
		j.mu.RLock()
		expired := !j.finishedAt.IsZero() && j.finishedAt.Before(cutoff)
		j.mu.RUnlock()
		if expired {
			s.jobs.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *JobStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("expired harvest jobs removed", "count", n)
			}
		}
	}
}

// PostHarvest returns a handler for POST /api/v1/harvest.
// It validates the request, registers a job, and runs the harvest in the
// background. The job outlives the HTTP request.
func PostHarvest(runner Runner, store *JobStore, notifier *webhook.Notifier, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.HarvestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidInput(c, err.Error())
			return
		}
		enc, err := export.ForFormat(req.Format)
		if err != nil {
			respondError(c, err)
			return
		}

		limit := listing.NoLimit
		if req.Limit != nil {
			limit = *req.Limit
		}
		preq := pipeline.Request{
			Limit:   limit,
			Filters: req.Filters.Permit(models.AllowedFilters...),
		}

		j := store.create(enc.Format())
		ctx := context.WithoutCancel(c.Request.Context())
		go runJob(ctx, runner, store, j, preq, req, notifier, m)

		c.JSON(http.StatusAccepted, models.HarvestAccepted{ID: j.id, Status: models.JobRunning})
	}
}

func runJob(ctx context.Context, runner Runner, store *JobStore, j *job, preq pipeline.Request, req models.HarvestRequest, notifier *webhook.Notifier, m *metrics.Metrics) {
	m.JobStarted()
	defer m.JobFinished()

	res, err := runner.Run(ctx, preq)
	j.finish(res, err, store.now())

	resp := j.response(false)
	slog.Info("harvest job finished",
		"id", j.id,
		"status", resp.Status,
		"total", resp.Total,
		"failed", resp.Failed,
	)

	if req.WebhookURL == "" || notifier == nil {
		return
	}
	eventType := webhook.EventJobCompleted
	if err != nil {
		eventType = webhook.EventJobFailed
	}
	notifier.SendAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
		Type:      eventType,
		JobID:     j.id,
		Timestamp: store.now().Unix(),
		Data:      resp,
	})
}

// GetHarvest returns a handler for GET /api/v1/harvest/:id.
func GetHarvest(store *JobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		j, ok := store.get(c.Param("id"))
		if !ok {
			respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "harvest job not found", nil))
			return
		}
		c.JSON(http.StatusOK, j.response(true))
	}
}

// ExportHarvest returns a handler for GET /api/v1/harvest/:id/export.
// The format query parameter overrides the one the job was created with.
func ExportHarvest(store *JobStore, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		j, ok := store.get(c.Param("id"))
		if !ok {
			respondError(c, models.NewScrapeError(models.ErrCodeNotFound, "harvest job not found", nil))
			return
		}

		j.mu.RLock()
		status, format, res := j.status, j.format, j.result
		j.mu.RUnlock()

		if status != models.JobCompleted {
			respondError(c, models.NewScrapeError(models.ErrCodeNotReady, "harvest job is "+status, nil))
			return
		}
		if f := c.Query("format"); f != "" {
			format = f
		}
		enc, err := export.ForFormat(format)
		if err != nil {
			respondError(c, err)
			return
		}
		writeArtifact(c, enc, res.Records, m)
	}
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
