package errors

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/metrics"
	"github.com/socialgate/socialgate/internal/observability"
	"github.com/socialgate/socialgate/internal/server/middleware"
)

func decodePlatformError(t *testing.T, rec *httptest.ResponseRecorder) PlatformErrorResponse {
	t.Helper()
	var body PlatformErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondWithPlatformErrorUsesCarriedStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{"input", core.NewMissingParamError(core.PlatformFacebook, "page_id"), http.StatusBadRequest, "Missing required parameter"},
		{"not found", core.NewNotFoundError(core.PlatformTwitter, "User not found"), http.StatusNotFound, "User not found"},
		{"config", core.NewConfigError(core.PlatformYouTube, "YouTube API key not configured"), http.StatusInternalServerError, "Configuration error"},
		{"unimplemented", core.NewUnimplementedError(core.PlatformTwitter, "nope"), http.StatusNotImplemented, "Not implemented"},
		{"rate limited", core.NewRateLimitedError(core.PlatformTwitter, nil), http.StatusTooManyRequests, "Rate limit exceeded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			rec := httptest.NewRecorder()

			RespondWithPlatformError(rec, req, core.PlatformTwitter, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.title, decodePlatformError(t, rec).Error)
		})
	}
}

func TestRespondWithPlatformErrorListsValidActions(t *testing.T) {
	rec := httptest.NewRecorder()
	err := core.NewInvalidActionError(core.PlatformInstagram, "stories", []string{"profile", "media", "insights"})

	RespondWithPlatformError(rec, nil, core.PlatformInstagram, err)

	body := decodePlatformError(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid action", body.Error)
	assert.Equal(t, "instagram", body.Platform)
	assert.Equal(t, []string{"profile", "media", "insights"}, body.ValidActions)
}

func TestRespondWithPlatformErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/youtube", nil)

	RespondWithPlatformError(rec, req, core.PlatformYouTube, stderrors.New("dial tcp 10.0.0.1:6379: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "6379")
	body := decodePlatformError(t, rec)
	assert.Equal(t, InternalErrorTitle, body.Error)
	assert.Equal(t, "youtube", body.Platform)
}

func TestRespondWithErrorUsesEnvelope(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, r, NewNotFoundError("missing"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, body.Error.Code)
	assert.Equal(t, "req-1", body.Error.RequestID)
}

func TestEnsureEnvelopeMapsPlatformErrors(t *testing.T) {
	env := EnsureEnvelope(core.NewConfigError(core.PlatformTwitter, "missing"))
	assert.Equal(t, CodeConfigInvalid, env.Code)
	assert.Equal(t, "twitter", env.Context["platform"])

	env = EnsureEnvelope(stderrors.New("boom"))
	assert.Equal(t, CodeInternal, env.Code)
}

func TestHTTPStatusFromCode(t *testing.T) {
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatusFromCode(CodeRateLimited))
	assert.Equal(t, http.StatusNotImplemented, HTTPStatusFromCode(CodeNotImplemented))
	assert.Equal(t, http.StatusMethodNotAllowed, HTTPStatusFromCode(CodeMethodNotAllowed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromCode("SOMETHING_ELSE"))
}

func TestWrapCarriesRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDContextKey, "abc")
	env := Wrap(ctx, CodeTimeout, stderrors.New("slow"), "upstream timed out")
	assert.Equal(t, "abc", env.CorrelationID)
	assert.Equal(t, "slow", env.Context["wrapped_error"])
}

func TestErrorMetricsCarryPlatformAndRoute(t *testing.T) {
	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)
	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })

	req := httptest.NewRequest(http.MethodGet, "/api/twitter?action=user_info", nil)
	RespondWithPlatformError(httptest.NewRecorder(), req, core.PlatformTwitter,
		core.NewMissingParamError(core.PlatformTwitter, "username"))
	RespondWithError(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/version", nil), NewNotFoundError("missing"))

	totals := collector.GetMetricsByName(metrics.ErrorsTotal)
	require.Len(t, totals, 2)
	assert.Equal(t, "twitter", totals[0].Tags["platform"])
	assert.Equal(t, CodeInvalidInput, totals[0].Tags["error_code"])
	assert.Equal(t, "400", totals[0].Tags["http_status"])
	assert.Equal(t, "none", totals[1].Tags["platform"])

	byEndpoint := collector.GetMetricsByName(metrics.ErrorsByEndpoint)
	require.Len(t, byEndpoint, 2)
	assert.Equal(t, "/api/{platform}", byEndpoint[0].Tags["endpoint"])
	assert.Equal(t, "/version", byEndpoint[1].Tags["endpoint"])
}
