package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolved intents by where their time range came from.
	intentsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuebook_intents_resolved_total",
			Help: "Total number of resolved booking intents by provenance",
		},
		[]string{"provenance"}, // local, external, default
	)

	// External collaborator calls.
	llmCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuebook_llm_calls_total",
			Help: "Total number of external suggestion calls by outcome",
		},
		[]string{"outcome"}, // success, error
	)

	llmLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "venuebook_llm_call_seconds",
			Help:    "External suggestion call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 30},
		},
	)

	bookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuebook_bookings_created_total",
			Help: "Total number of bookings created",
		},
		[]string{"kind"}, // single, recurring
	)

	bookingConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "venuebook_booking_conflicts_total",
			Help: "Total number of booking attempts rejected for overlap",
		},
		[]string{"kind"}, // single, recurring
	)

	storeDegraded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "venuebook_store_degraded",
			Help: "1 while the booking store serves from its in-memory mirror",
		},
	)
)

// RecordIntent counts a resolved intent.
func RecordIntent(provenance string) {
	intentsResolved.WithLabelValues(provenance).Inc()
}

// RecordLLMCall records an external suggestion call.
func RecordLLMCall(duration time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	llmCalls.WithLabelValues(outcome).Inc()
	llmLatency.Observe(duration.Seconds())
}

// RecordBookingsCreated adds n created bookings.
func RecordBookingsCreated(kind string, n int) {
	if n > 0 {
		bookingsCreated.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordConflicts adds n rejected booking attempts.
func RecordConflicts(kind string, n int) {
	if n > 0 {
		bookingConflicts.WithLabelValues(kind).Add(float64(n))
	}
}

// SetStoreDegraded sets the degraded-mode gauge.
func SetStoreDegraded(degraded bool) {
	if degraded {
		storeDegraded.Set(1)
		return
	}
	storeDegraded.Set(0)
}

// Gatherer returns the registry the metrics are registered in.
func Gatherer() prometheus.Gatherer {
	return prometheus.DefaultGatherer
}
