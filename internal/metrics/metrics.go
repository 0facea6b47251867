// Package metrics provides Prometheus metrics for the proxy.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lanzouproxy/lanzouproxy/internal/common/httpx"
)

// Upstream call outcomes.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lanzouproxy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lanzouproxy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Upstream portal metrics
	upstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lanzouproxy_upstream_calls_total",
			Help: "Total calls to the upstream portal",
		},
		[]string{"operation", "result"},
	)

	upstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lanzouproxy_upstream_call_duration_seconds",
			Help:    "Upstream portal call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Session metrics
	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lanzouproxy_login_attempts_total",
			Help: "Total login attempts",
		},
		[]string{"method", "result"},
	)

	sessionLoggedIn = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lanzouproxy_session_logged_in",
			Help: "1 while the shared portal session is logged in",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUpstreamCall records one upstream portal call.
func RecordUpstreamCall(operation, result string, duration time.Duration) {
	upstreamCallsTotal.WithLabelValues(operation, result).Inc()
	upstreamCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordLoginAttempt records a login attempt by method ("password" or "cookie").
func RecordLoginAttempt(method string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	loginAttemptsTotal.WithLabelValues(method, result).Inc()
}

// SetLoggedIn sets the session gauge.
func SetLoggedIn(loggedIn bool) {
	if loggedIn {
		sessionLoggedIn.Set(1)
		return
	}
	sessionLoggedIn.Set(0)
}

// Middleware records request metrics labelled by chi route pattern, so path
// parameters do not inflate label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := httpx.NewResponseWriter(w)
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		RecordHTTPRequest(r.Method, route, rw.Status(), time.Since(start))
	})
}
