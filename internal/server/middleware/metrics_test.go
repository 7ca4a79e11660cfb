package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialgate/socialgate/internal/metrics"
	"github.com/socialgate/socialgate/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() {
		observability.TelemetrySystem = original
	})
	return collector
}

// apiRouter mounts handler the way the server mounts the gateway.
func apiRouter(handler http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestMetrics)
	r.Route("/api", func(r chi.Router) {
		r.Get("/platforms", handler)
		r.HandleFunc("/{platform}", handler)
	})
	return r
}

func tagsOf(collector *telemetrytesting.FakeCollector, name string) []map[string]string {
	recorded := collector.GetMetricsByName(name)
	out := make([]map[string]string, 0, len(recorded))
	for _, m := range recorded {
		out = append(out, m.Tags)
	}
	return out
}

func TestRequestMetricsLabelsPlatformRoute(t *testing.T) {
	collector := setupTelemetry(t)
	router := apiRouter(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	for _, path := range []string{"/api/twitter?action=search_tweets", "/api/youtube?action=trending_videos"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	requests := tagsOf(collector, "http_requests_total")
	require.Len(t, requests, 2)
	for _, tags := range requests {
		assert.Equal(t, "/api/{platform}", tags["endpoint"])
		assert.Equal(t, "GET", tags["method"])
		assert.Equal(t, "200", tags["status"])
	}
	assert.Equal(t, 2, collector.CountMetricsByName("http_request_duration_ms"))
	assert.Equal(t, 2, collector.CountMetricsByName("http_response_size_bytes"))
	assert.Zero(t, collector.CountMetricsByName("http_errors_total"))
}

func TestRequestMetricsClassifiesPlatformErrors(t *testing.T) {
	collector := setupTelemetry(t)
	router := apiRouter(func(w http.ResponseWriter, r *http.Request) {
		switch chi.URLParam(r, "platform") {
		case "youtube":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	})

	for _, path := range []string{"/api/twitter", "/api/youtube"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, nil))
	}

	errs := tagsOf(collector, "http_errors_total")
	require.Len(t, errs, 2)
	assert.Equal(t, "429", errs[0]["status"])
	assert.Equal(t, "client_error", errs[0]["error_type"])
	assert.Equal(t, "500", errs[1]["status"])
	assert.Equal(t, "server_error", errs[1]["error_type"])
	for _, tags := range errs {
		assert.Equal(t, "/api/{platform}", tags["endpoint"])
		assert.Equal(t, "POST", tags["method"])
	}
}

func TestRequestMetricsRecordsRequestSize(t *testing.T) {
	collector := setupTelemetry(t)
	router := apiRouter(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodPost, "/api/facebook", nil)
	req.Header.Set("Content-Length", "512")
	router.ServeHTTP(httptest.NewRecorder(), req)

	sizes := collector.GetMetricsByName("http_request_size_bytes")
	require.Len(t, sizes, 1)
	assert.Equal(t, float64(512), sizes[0].Value)
	assert.Equal(t, "/api/{platform}", sizes[0].Tags["endpoint"])
}

func TestRequestMetricsWithTelemetryDisabled(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() {
		observability.TelemetrySystem = original
	})

	rec := httptest.NewRecorder()
	apiRouter(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/platforms", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestMetricsKeepsRequestID(t *testing.T) {
	collector := setupTelemetry(t)

	handler := RequestID(RequestMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	req := httptest.NewRequest(http.MethodGet, "/api/instagram", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	requests := tagsOf(collector, "http_requests_total")
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/{platform}", requests[0]["endpoint"])
}

func TestEndpointPatternFallback(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/health", "/health/*"},
		{"/health/ready", "/health/*"},
		{"/version", "/version"},
		{"/metrics", "/metrics"},
		{"/api/twitter", "/api/{platform}"},
		{"/api/tiktok", "/api/{platform}"},
		{"/api/platforms", "/api/platforms"},
		{"/api/twitter/extra", "/unknown"},
		{"/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, EndpointPattern(httptest.NewRequest(http.MethodGet, tt.path, nil)))
		})
	}
}

func TestInboundLimitCountsRejections(t *testing.T) {
	collector := setupTelemetry(t)
	handler := InboundLimit(InboundLimitOptions{Requests: 1, Window: time.Minute})(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/twitter", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	rejected := tagsOf(collector, metrics.ErrorsByEndpoint)
	require.Len(t, rejected, 1)
	assert.Equal(t, "/api/{platform}", rejected[0]["endpoint"])
	assert.Equal(t, "RATE_LIMITED", rejected[0]["error_code"])
}
