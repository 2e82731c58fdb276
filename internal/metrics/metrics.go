// Package metrics provides Prometheus metrics for observability.
// Metrics are organized by domain: HTTP requests served by the console,
// calls made to the upstream TMS API, and admin session activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "transit_admin"
)

var (
	// HTTP metrics - track request volume and latency
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Upstream metrics - track calls to the TMS API
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of TMS API calls by endpoint, method, and status code",
		},
		[]string{"endpoint", "method", "status"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "TMS API call duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	UpstreamRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_in_flight",
			Help:      "Number of TMS API calls currently in progress",
		},
		[]string{"endpoint"},
	)

	// Session metrics - track admin login and session expiry
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "login_attempts_total",
			Help:      "Total number of admin login attempts by result",
		},
		[]string{"result"},
	)

	SessionExpiriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "expiries_total",
			Help:      "Total number of requests redirected to login because the session was missing or expired",
		},
	)
)

// StartUpstreamCall increments the in-flight gauge for an endpoint
func StartUpstreamCall(endpoint string) {
	UpstreamRequestsInFlight.WithLabelValues(endpoint).Inc()
}

// EndUpstreamCall decrements the in-flight gauge and records the outcome
func EndUpstreamCall(endpoint, method, status string, durationSeconds float64) {
	UpstreamRequestsInFlight.WithLabelValues(endpoint).Dec()
	UpstreamRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// ObserveLogin records the outcome of a login attempt
func ObserveLogin(result string) {
	LoginAttemptsTotal.WithLabelValues(result).Inc()
}

// ObserveSessionExpiry records a redirect to login caused by a missing
// or expired session
func ObserveSessionExpiry() {
	SessionExpiriesTotal.Inc()
}

// Timer is a helper for measuring operation duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer starting now
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time since the timer was created
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(time.Since(t.start).Seconds())
}

// Elapsed returns the seconds since the timer was created
func (t *Timer) Elapsed() float64 {
	return time.Since(t.start).Seconds()
}
