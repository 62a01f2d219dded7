package models

// HarvestRequest is the payload for POST /api/v1/harvest.
type HarvestRequest struct {
	// Limit caps the number of companies. Omitted means no cap.
	Limit *int `json:"limit,omitempty" binding:"omitempty,min=0"`

	// Filters are listing query filters in the order they should appear in
	// the listing URL. Unknown keys are dropped.
	Filters FilterSet `json:"filters"`

	// Format is the default export format for the job.
	// Allowed: "csv" (default), "json", "xlsx", "markdown".
	Format string `json:"format,omitempty" binding:"omitempty,oneof=csv json xlsx markdown md"`

	// WebhookURL receives a harvest.completed or harvest.failed event.
	WebhookURL string `json:"webhook_url,omitempty" binding:"omitempty,url"`

	// WebhookSecret signs the webhook body with HMAC-SHA256.
	WebhookSecret string `json:"webhook_secret,omitempty"`
}
