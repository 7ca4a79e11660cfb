package metrics

import (
	"strconv"

	"github.com/socialgate/socialgate/internal/observability"
)

const (
	ErrorsTotal      = "gateway_errors_total"
	PanicsTotal      = "gateway_panics_total"
	ErrorsByEndpoint = "gateway_errors_by_endpoint"
)

// noPlatform labels errors raised outside /api/{platform}.
const noPlatform = "none"

// RecordError counts one error response. platform is empty for
// operational routes.
func RecordError(errorCode string, httpStatus int, platform string) {
	if observability.TelemetrySystem == nil {
		return
	}
	if platform == "" {
		platform = noPlatform
	}
	_ = observability.TelemetrySystem.Counter(ErrorsTotal, 1, map[string]string{
		"error_code":  errorCode,
		"http_status": strconv.Itoa(httpStatus),
		"platform":    platform,
	})
}

// RecordPanic counts a recovered panic on endpoint.
func RecordPanic(endpoint string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(PanicsTotal, 1, map[string]string{"endpoint": endpoint})
}

// RecordErrorByEndpoint counts an error by route pattern. Callers pass the
// pattern, not the raw path.
func RecordErrorByEndpoint(endpoint string, errorCode string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ErrorsByEndpoint, 1, map[string]string{
		"endpoint":   endpoint,
		"error_code": errorCode,
	})
}
