package metrics

import (
	"strconv"
	"time"

	"github.com/socialgate/socialgate/internal/observability"
)

// Gateway metrics following Prometheus conventions
var (
	// Platform action metrics
	ActionsTotal = "gateway_actions_total"

	// Upstream call metrics
	UpstreamRequestsTotal = "gateway_upstream_requests_total"
	UpstreamDuration      = "gateway_upstream_duration_ms"

	// Self-throttle metrics
	LimiterWaitDuration = "gateway_limiter_wait_ms"
	LimiterWaitsTotal   = "gateway_limiter_waits_total"

	BreakerState = "gateway_breaker_open"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
)

// RecordAction records the outcome of one dispatched platform action.
// outcome is "success" or the error kind.
func RecordAction(platform, action, outcome string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ActionsTotal,
			1,
			map[string]string{
				"platform": platform,
				"action":   action,
				"outcome":  outcome,
			},
		)
	}
}

// RecordUpstreamRequest records one outbound call. status is 0 for
// transport failures.
func RecordUpstreamRequest(platform string, status int, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}

	statusLabel := "transport_error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}

	_ = observability.TelemetrySystem.Counter(
		UpstreamRequestsTotal,
		1,
		map[string]string{
			"platform": platform,
			"status":   statusLabel,
		},
	)
	_ = observability.TelemetrySystem.Histogram(
		UpstreamDuration,
		duration,
		map[string]string{
			"platform": platform,
		},
	)
}

// RecordLimiterWait records time a caller was held by the self-throttle.
func RecordLimiterWait(platform string, waited time.Duration) {
	if observability.TelemetrySystem == nil || waited <= 0 {
		return
	}

	labels := map[string]string{"platform": platform}
	_ = observability.TelemetrySystem.Counter(LimiterWaitsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(LimiterWaitDuration, waited, labels)
}

// SetBreakerOpen reports whether a platform's circuit breaker is open.
func SetBreakerOpen(platform string, open bool) {
	if observability.TelemetrySystem == nil {
		return
	}

	value := 0.0
	if open {
		value = 1
	}
	_ = observability.TelemetrySystem.Gauge(
		BreakerState,
		value,
		map[string]string{"platform": platform},
	)
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
