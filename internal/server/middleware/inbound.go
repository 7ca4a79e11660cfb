package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/metrics"
	"github.com/socialgate/socialgate/internal/observability"
)

// InboundLimitOptions bounds how often one client address may call the API.
// A zero Requests disables the limit.
type InboundLimitOptions struct {
	Requests int
	Window   time.Duration
}

const inboundLimitTitle = "Too many requests"

// InboundLimit throttles callers per real client IP, independently of the
// per-platform upstream limiters.
func InboundLimit(opts InboundLimitOptions) func(http.Handler) http.Handler {
	if opts.Requests <= 0 || opts.Window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		opts.Requests,
		opts.Window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(inboundLimited),
	)
}

func inboundLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RecordErrorByEndpoint(EndpointPattern(r), "RATE_LIMITED")
	if observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Inbound rate limit exceeded",
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("path", r.URL.Path),
			zap.String("requestID", GetRequestID(r.Context())),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": inboundLimitTitle})
}
