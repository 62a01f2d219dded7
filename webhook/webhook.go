// Package webhook notifies callers when an async harvest job finishes.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/use-agent/harvest/config"
)

// Event types.
const (
	EventJobCompleted = "harvest.completed"
	EventJobFailed    = "harvest.failed"
)

// SignatureHeader carries "sha256=<hex HMAC of the body>" when a secret is set.
const SignatureHeader = "X-Harvest-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	JobID     string `json:"job_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// Notifier delivers events with retries.
type Notifier struct {
	client *http.Client
	delays []time.Duration
}

// NewNotifier creates a Notifier from cfg. Each entry of cfg.RetryDelays is
// one attempt, waited for before that attempt.
func NewNotifier(cfg config.WebhookConfig) *Notifier {
	delays := cfg.RetryDelays
	if len(delays) == 0 {
		delays = []time.Duration{0}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		client: &http.Client{Timeout: timeout},
		delays: delays,
	}
}

// Deliver sends one event synchronously.
func (n *Notifier) Deliver(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Harvest-Webhook/1.0")
	if secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Send delivers event, retrying per the configured delays, and reports
// whether any attempt succeeded. It stops early if ctx is done.
func (n *Notifier) Send(ctx context.Context, url, secret string, event *Event) bool {
	for attempt, delay := range n.delays {
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return false
			case <-t.C:
			}
		}
		err := n.Deliver(ctx, url, secret, event)
		if err == nil {
			slog.Info("webhook delivered", "url", url, "event", event.Type, "job_id", event.JobID, "attempt", attempt+1)
			return true
		}
		slog.Warn("webhook delivery failed", "url", url, "event", event.Type, "job_id", event.JobID, "attempt", attempt+1, "error", err)
	}
	slog.Error("webhook delivery exhausted all retries", "url", url, "event", event.Type, "job_id", event.JobID)
	return false
}

// SendAsync runs Send in a new goroutine, detached from any request.
func (n *Notifier) SendAsync(url, secret string, event *Event) {
	go n.Send(context.Background(), url, secret, event)
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
