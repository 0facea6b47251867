package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordUpstreamCall(t *testing.T) {
	before := testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("list_files", ResultRejected))
	RecordUpstreamCall("list_files", ResultRejected, 10*time.Millisecond)
	after := testutil.ToFloat64(upstreamCallsTotal.WithLabelValues("list_files", ResultRejected))
	assert.Equal(t, before+1, after)
}

func TestLoginMetrics(t *testing.T) {
	before := testutil.ToFloat64(loginAttemptsTotal.WithLabelValues("password", "failure"))
	RecordLoginAttempt("password", false)
	assert.Equal(t, before+1, testutil.ToFloat64(loginAttemptsTotal.WithLabelValues("password", "failure")))

	SetLoggedIn(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(sessionLoggedIn))
	SetLoggedIn(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(sessionLoggedIn))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/files/{id}/share", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/files/{id}/share", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/files/42/share", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/files/{id}/share", "200"))
	assert.Equal(t, before+1, after)
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordUpstreamCall("landing", ResultOK, time.Millisecond)
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "lanzouproxy_upstream_calls_total"))
}
