package models

// Job statuses.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// HarvestAccepted is the response for POST /api/v1/harvest.
type HarvestAccepted struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// JobResponse is the response for GET /api/v1/harvest/:id.
type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`

	// URL is the listing URL the job harvested.
	URL string `json:"url"`

	Total    int      `json:"total"`
	Enriched int      `json:"enriched"`
	Failed   int      `json:"failed"`
	Records  []Record `json:"records,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`

	CreatedAt  int64 `json:"created_at"`
	FinishedAt int64 `json:"finished_at,omitempty"`
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
