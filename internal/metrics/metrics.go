// Package metrics exposes pipeline run metrics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pfrederiksen/ff-events/internal/scraper"
)

// Run outcomes used as the "result" label.
const (
	ResultSuccess    = "success"
	ResultFailed     = "failed"
	ResultStoreError = "store_error"
)

// Metrics holds the collectors of one registry
type Metrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	events         prometheus.Gauge
	rows           prometheus.Gauge
	skippedRows    *prometheus.GaugeVec
	scrollSteps    prometheus.Gauge
	failedSteps    prometheus.Gauge
	lastSuccessTS  prometheus.Gauge
	snapshotEvents *prometheus.GaugeVec
}

// New creates and registers the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ffevents",
		Name:      "runs_total",
		Help:      "Pipeline runs by result",
	}, []string{"trigger", "result"})
	m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ffevents",
		Name:      "run_duration_seconds",
		Help:      "Wall time of pipeline runs",
		Buckets:   []float64{15, 30, 60, 120, 240, 480, 900},
	})
	m.events = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ffevents",
		Name:      "last_run_events",
		Help:      "Events emitted by the last successful run",
	})
	m.rows = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ffevents",
		Name:      "last_run_rows",
		Help:      "Distinct calendar rows observed by the last successful run",
	})
	m.skippedRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ffevents",
		Name:      "last_run_skipped_rows",
		Help:      "Rows of the last successful run that produced no event, by reason",
	}, []string{"reason"})
	m.scrollSteps = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ffevents",
		Name:      "last_run_scroll_steps",
		Help:      "Scroll steps taken by the last successful run",
	})
	m.failedSteps = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ffevents",
		Name:      "last_run_failed_scroll_steps",
		Help:      "Scroll steps of the last successful run that could not be captured",
	})
	m.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ffevents",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last run whose snapshot was stored",
	})
	m.snapshotEvents = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ffevents",
		Name:      "snapshot_events",
		Help:      "Events in the stored snapshot by currency",
	}, []string{"currency"})

	m.registry.MustRegister(
		m.runsTotal, m.runDuration, m.events, m.rows, m.skippedRows,
		m.scrollSteps, m.failedSteps, m.lastSuccessTS, m.snapshotEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records the outcome of a run. The last_run gauges only move
// when the snapshot was stored.
func (m *Metrics) ObserveRun(trigger, outcome string, duration time.Duration, result *scraper.Result) {
	m.runsTotal.WithLabelValues(trigger, outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
	if result == nil || outcome != ResultSuccess {
		return
	}

	m.events.Set(float64(result.Stats.Emitted))
	m.rows.Set(float64(result.Stats.Rows))
	m.skippedRows.Reset()
	for reason, n := range result.Stats.Skipped {
		m.skippedRows.WithLabelValues(string(reason)).Set(float64(n))
	}
	m.scrollSteps.Set(float64(result.Render.Steps))
	m.failedSteps.Set(float64(result.Render.FailedSteps))
	m.lastSuccessTS.Set(float64(time.Now().Unix()))
	m.snapshotEvents.Reset()
	for _, evt := range result.Events {
		m.snapshotEvents.WithLabelValues(evt.Currency).Inc()
	}
}
