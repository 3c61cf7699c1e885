// Package metrics provides Prometheus metrics instrumentation for the
// generative-response pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SubmissionsTotal tracks submissions by terminal outcome
	// (committed, rolled_back, rejected).
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_submissions_total",
			Help: "Conversation submissions by outcome",
		},
		[]string{"outcome"},
	)

	// SnapshotsApplied tracks streaming snapshots applied to ephemeral turns.
	SnapshotsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_snapshots_applied_total",
			Help: "Partial response snapshots applied",
		},
	)

	// StreamDuration tracks the duration of one model object stream.
	StreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_stream_duration_seconds",
			Help:    "Model object stream duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"status"},
	)

	// StreamsActive tracks in-flight object streams.
	StreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_streams_active",
			Help: "Number of in-flight response streams",
		},
	)

	// InteractionsTotal tracks routed UI interactions by kind.
	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_interactions_total",
			Help: "UI interactions routed back into conversations",
		},
		[]string{"kind", "handled"},
	)

	// RenderErrorsTotal tracks render failures isolated per element.
	RenderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_render_errors_total",
			Help: "Render failures caught at the dispatch boundary",
		},
		[]string{"extension"},
	)

	// UnknownExtensionsTotal tracks tags that missed the registry at render
	// time; growth here signals schema drift between model and deployment.
	UnknownExtensionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_unknown_extensions_total",
			Help: "Rendered elements whose tag was not registered",
		},
		[]string{"extension"},
	)

	// PinnedItemsTotal tracks pinned item creations by extension.
	PinnedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_pinned_items_total",
			Help: "Pinned items created",
		},
		[]string{"extension"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordStream records one finished model object stream.
func RecordStream(status string, seconds float64) {
	StreamDuration.WithLabelValues(status).Observe(seconds)
}
