// Package metrics exposes Prometheus instrumentation for the API, the
// analytics services and the document store.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmap_http_requests_total",
			Help: "Total HTTP requests by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventmap_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Analytics
	InteractionsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventmap_interactions_recorded_total",
			Help: "Total event views committed",
		},
	)

	EventsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventmap_events_completed_total",
			Help: "Total (visitor, event) pairs that crossed the completion threshold",
		},
	)

	CelebrationsMarked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventmap_celebrations_marked_total",
			Help: "Total completion celebrations marked as seen",
		},
	)

	Heartbeats = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmap_session_heartbeats_total",
			Help: "Session heartbeats received, by outcome",
		},
		[]string{"outcome"}, // "stored", "stale", "final"
	)

	QuizSubmissions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventmap_quiz_submissions_total",
			Help: "Total graded quiz submissions",
		},
	)

	QuizScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventmap_quiz_score_percent",
			Help:    "Distribution of quiz scores as a percentage",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	ProgressSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventmap_progress_subscribers",
			Help: "Open progress event streams",
		},
	)

	// Store
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventmap_db_query_duration_seconds",
			Help:    "Document store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventmap_db_query_errors_total",
			Help: "Document store operation failures",
		},
		[]string{"operation", "table"},
	)

	// Client
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventmap_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordInteraction counts one committed view. newlyCompleted is true only
// on the view that first crossed the completion threshold.
func RecordInteraction(newlyCompleted bool) {
	InteractionsRecorded.Inc()
	if newlyCompleted {
		EventsCompleted.Inc()
	}
}

func RecordHeartbeat(outcome string) {
	Heartbeats.WithLabelValues(outcome).Inc()
}

func RecordQuizSubmission(percentage float64) {
	QuizSubmissions.Inc()
	QuizScore.Observe(percentage)
}

func RecordDBQuery(operation, table string, d time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(d.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}
