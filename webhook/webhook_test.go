package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/harvest/config"
)

func TestDeliverSigns(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{Timeout: time.Second})
	ev := &Event{Type: EventJobCompleted, JobID: "harvest-1", Timestamp: 1}
	if err := n.Deliver(context.Background(), srv.URL, "s3cret", ev); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if want := "sha256=" + Sign("s3cret", gotBody); gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}
}

func TestDeliverNoSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(SignatureHeader) != "" {
			t.Error("unexpected signature header")
		}
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{})
	if err := n.Deliver(context.Background(), srv.URL, "", &Event{Type: EventJobFailed}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
}

func TestSendRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{
		Timeout:     time.Second,
		RetryDelays: []time.Duration{0, time.Millisecond, time.Millisecond},
	})
	if !n.Send(context.Background(), srv.URL, "", &Event{Type: EventJobCompleted}) {
		t.Fatal("Send reported failure")
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3", hits.Load())
	}
}

func TestSendExhausts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(config.WebhookConfig{RetryDelays: []time.Duration{0, 0}})
	if n.Send(context.Background(), srv.URL, "", &Event{}) {
		t.Fatal("Send should fail")
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", hits.Load())
	}
}
