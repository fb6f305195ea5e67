// Package metrics registers the Prometheus instruments shared across
// services. Everything is registered via promauto on the default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ComplaintsCreated prometheus.Counter
	ReportsFiled      prometheus.Counter
	StatusTransitions *prometheus.CounterVec
	MirrorFailures    *prometheus.CounterVec
	ArchiveDuration   prometheus.Histogram
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ComplaintsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cybercell_complaints_created_total",
			Help: "Total number of complaints created",
		}),
		ReportsFiled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cybercell_reports_filed_total",
			Help: "Total number of incident reports filed",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cybercell_status_transitions_total",
			Help: "Complaint status transitions by target status",
		}, []string{"to"}),
		MirrorFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cybercell_ledger_mirror_failures_total",
			Help: "Best-effort ledger mirror failures by ledger and operation",
		}, []string{"ledger", "op"}),
		ArchiveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cybercell_evidence_archive_seconds",
			Help:    "Evidence archive latency",
			Buckets: prometheus.DefBuckets,
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cybercell_http_request_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveArchive records an archive latency sample.
func (m *Metrics) ObserveArchive(d time.Duration) {
	if m == nil {
		return
	}
	m.ArchiveDuration.Observe(d.Seconds())
}

// IncMirrorFailure counts a failed best-effort mirror write.
func (m *Metrics) IncMirrorFailure(ledger, op string) {
	if m == nil {
		return
	}
	m.MirrorFailures.WithLabelValues(ledger, op).Inc()
}

// IncComplaintsCreated increments the created-complaints counter.
func (m *Metrics) IncComplaintsCreated() {
	if m == nil {
		return
	}
	m.ComplaintsCreated.Inc()
}

// IncReportsFiled increments the filed-reports counter.
func (m *Metrics) IncReportsFiled() {
	if m == nil {
		return
	}
	m.ReportsFiled.Inc()
}

// IncStatusTransition counts a persisted status transition.
func (m *Metrics) IncStatusTransition(to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(to).Inc()
}
