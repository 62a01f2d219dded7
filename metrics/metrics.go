// Package metrics exposes Prometheus collectors for harvest runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "harvest"

// Metrics owns a private registry so several instances can coexist in tests.
// All methods are safe on a nil *Metrics and then do nothing.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	recordsHarvested prometheus.Counter
	detailPages      *prometheus.CounterVec
	jobsActive       prometheus.Gauge
	exportsTotal     *prometheus.CounterVec
}

// New creates and registers all collectors, plus the Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"status"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"stage"}),
		recordsHarvested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_harvested_total",
			Help:      "Listing records collected.",
		}),
		detailPages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detail_pages_total",
			Help:      "Detail pages processed by result.",
		}, []string{"result"}),
		jobsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_active",
			Help:      "Async harvest jobs currently running.",
		}),
		exportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Encoded artifacts by format.",
		}, []string{"format"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RunFinished counts a pipeline run; status is "ok" or "failed".
func (m *Metrics) RunFinished(status string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
}

// ObserveStage records how long a stage ("harvest", "enrich") took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordsHarvested adds n listing records.
func (m *Metrics) RecordsHarvested(n int) {
	if m == nil {
		return
	}
	m.recordsHarvested.Add(float64(n))
}

// DetailPages adds enrichment outcomes.
func (m *Metrics) DetailPages(enriched, failed int) {
	if m == nil {
		return
	}
	m.detailPages.WithLabelValues("enriched").Add(float64(enriched))
	m.detailPages.WithLabelValues("failed").Add(float64(failed))
}

// JobStarted and JobFinished track running async jobs.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.jobsActive.Inc()
}

func (m *Metrics) JobFinished() {
	if m == nil {
		return
	}
	m.jobsActive.Dec()
}

// Exported counts one encoded artifact.
func (m *Metrics) Exported(format string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(format).Inc()
}
