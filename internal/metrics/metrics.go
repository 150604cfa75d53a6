// Package metrics holds the Prometheus collectors for capture operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	SessionsIngested prometheus.Counter
	EntriesIngested  prometheus.Counter
	EntriesSkipped   prometheus.Counter
	Merges           prometheus.Counter
	SessionsDeleted  prometheus.Counter
	Resets           prometheus.Counter
	OperationErrors  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
}

// New registers every collector on reg. Passing a fresh registry per test
// avoids duplicate registration panics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capture_sessions_ingested_total",
			Help: "Capture sessions accepted from devices.",
		}),
		EntriesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capture_entries_ingested_total",
			Help: "Scanned entries stored by ingestion.",
		}),
		EntriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capture_entries_skipped_total",
			Help: "Malformed entries dropped during ingestion.",
		}),
		Merges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capture_merges_total",
			Help: "Successful session merges.",
		}),
		SessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capture_sessions_deleted_total",
			Help: "Sessions removed by bulk delete, merge or reset.",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "capture_resets_total",
			Help: "Full data resets.",
		}),
		OperationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capture_operation_errors_total",
			Help: "Failed store operations by operation name.",
		}, []string{"operation"}),
		OperationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "capture_operation_duration_seconds",
			Help:    "Store operation latency by operation name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.SessionsIngested,
		m.EntriesIngested,
		m.EntriesSkipped,
		m.Merges,
		m.SessionsDeleted,
		m.Resets,
		m.OperationErrors,
		m.OperationLatency,
	)
	return m
}

// NewRegistry returns a registry that also exports Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Observe records the outcome of one operation. Nil receivers are allowed.
func (m *Metrics) Observe(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.OperationLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if err != nil {
		m.OperationErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) AddIngested(entries, skipped int) {
	if m == nil {
		return
	}
	m.SessionsIngested.Inc()
	m.EntriesIngested.Add(float64(entries))
	m.EntriesSkipped.Add(float64(skipped))
}

func (m *Metrics) AddDeleted(sessions int64) {
	if m == nil {
		return
	}
	m.SessionsDeleted.Add(float64(sessions))
}

func (m *Metrics) IncMerges() {
	if m == nil {
		return
	}
	m.Merges.Inc()
}

func (m *Metrics) IncResets() {
	if m == nil {
		return
	}
	m.Resets.Inc()
}
