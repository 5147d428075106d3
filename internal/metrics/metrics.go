// Package metrics records decode outcomes as Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks decode counts, failures and latency.
//
// All metrics use the parm_ prefix. A nil *Metrics is a valid no-op collector.
type Metrics struct {
	// DecodesTotal counts successful decodes by variant and status.
	DecodesTotal *prometheus.CounterVec

	// FailuresTotal counts failed decodes by error kind.
	FailuresTotal *prometheus.CounterVec

	// DecodeDuration tracks per-file decode latency.
	DecodeDuration prometheus.Histogram

	// BytesTotal counts source bytes read.
	BytesTotal prometheus.Counter
}

// New creates metrics and registers them with reg.
// Panics if registration fails.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parm_decodes_total",
				Help: "Successfully decoded files by variant and status",
			},
			[]string{"variant", "status"},
		),
		FailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parm_decode_failures_total",
				Help: "Failed decodes by error kind",
			},
			[]string{"kind"},
		),
		DecodeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "parm_decode_duration_seconds",
				Help:    "Per-file decode duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		BytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parm_bytes_total",
				Help: "Source bytes read",
			},
		),
	}

	reg.MustRegister(
		m.DecodesTotal,
		m.FailuresTotal,
		m.DecodeDuration,
		m.BytesTotal,
	)
	return m
}

// RecordDecode records a successful decode.
func (m *Metrics) RecordDecode(variant, status string, size int64, durationSeconds float64) {
	if m == nil {
		return
	}
	m.DecodesTotal.WithLabelValues(variant, status).Inc()
	m.BytesTotal.Add(float64(size))
	m.DecodeDuration.Observe(durationSeconds)
}

// RecordFailure records a failed decode under the given error kind.
func (m *Metrics) RecordFailure(kind string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(kind).Inc()
	m.DecodeDuration.Observe(durationSeconds)
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
