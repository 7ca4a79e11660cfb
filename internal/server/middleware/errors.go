package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/metrics"
	"github.com/socialgate/socialgate/internal/observability"
)

// Body of the generic 500 response. Panic detail never reaches the client.
const (
	panicErrorTitle   = "Internal server error"
	panicErrorMessage = "An unexpected error occurred"
)

// Recovery turns a panic in a downstream handler into the gateway's generic
// 500 body and logs the stack under the request id.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				envelope := errors.NewErrorEnvelope("INTERNAL_ERROR", fmt.Sprintf("panic: %v", rec)).
					WithCorrelationID(GetRequestID(r.Context()))
				envelope, _ = envelope.WithContext(map[string]interface{}{
					"stack_trace": string(debug.Stack()),
					"path":        r.URL.Path,
				})
				envelope, _ = envelope.WithSeverity(errors.SeverityCritical)

				metrics.RecordPanic(EndpointPattern(r))
				if logger := observability.Logger(); logger != nil {
					logger.Error("Recovered from handler panic",
						zap.String("code", envelope.Code),
						zap.String("message", envelope.Message),
						zap.String("request_id", envelope.CorrelationID),
						zap.Any("context", envelope.Context),
					)
				}

				writePanicResponse(w, chi.URLParam(r, "platform"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type panicResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Platform string `json:"platform,omitempty"`
}

// writePanicResponse writes the body directly; the errors package imports
// this one.
func writePanicResponse(w http.ResponseWriter, platform string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(panicResponse{
		Error:    panicErrorTitle,
		Message:  panicErrorMessage,
		Platform: platform,
	})
}
