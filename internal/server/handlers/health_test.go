package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandlerReturnsHealthyStatus(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("window_store", HealthCheckerFunc(func(context.Context) error { return nil }))

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "healthy", resp.Checks["window_store"])
}

func TestHealthHandlerReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("window_store", HealthCheckerFunc(func(context.Context) error {
		return errors.New("redis: connection refused")
	}))

	rec := httptest.NewRecorder()
	manager.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp struct {
		Error struct {
			Code    string                 `json:"code"`
			Message string                 `json:"message"`
			Details map[string]interface{} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
	assert.Equal(t, "ready probe failed", resp.Error.Message)
	assert.Equal(t, "ready", resp.Error.Details["probe"])
	checks, ok := resp.Error.Details["checks"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "unhealthy", checks["window_store"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRunChecksMarksExpiredContextAsTimeout(t *testing.T) {
	manager := NewHealthManager("dev")
	called := false
	manager.RegisterChecker("window_store", HealthCheckerFunc(func(context.Context) error {
		called = true
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checks := manager.RunChecks(ctx)
	assert.False(t, called)
	assert.Equal(t, "timeout", checks["window_store"])
	assert.Equal(t, "degraded", OverallStatus(checks))
}

func TestOverallStatus(t *testing.T) {
	assert.Equal(t, "healthy", OverallStatus(nil))
	assert.Equal(t, "unhealthy", OverallStatus(map[string]string{"a": "timeout", "b": "unhealthy"}))
	assert.Equal(t, "degraded", OverallStatus(map[string]string{"a": "healthy", "b": "degraded"}))
}

func TestGlobalHandlersBeforeInit(t *testing.T) {
	saved := globalHealthManager
	globalHealthManager = nil
	t.Cleanup(func() { globalHealthManager = saved })

	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
