package errors

import (
	"context"
	"net/http"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/metrics"
	"github.com/socialgate/socialgate/internal/observability"
	"github.com/socialgate/socialgate/internal/server/middleware"
)

// Envelope codes
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeNotImplemented     = "NOT_IMPLEMENTED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeTimeout            = "TIMEOUT"
)

// Messages used when a failure is not a normalized platform error. The
// underlying cause is logged, never returned.
const (
	InternalErrorTitle   = "Internal server error"
	InternalErrorMessage = "An unexpected error occurred"
)

func NewNotFoundError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeNotFound, message)
}

func NewMethodNotAllowedError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeMethodNotAllowed, message)
}

func NewInternalError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeInternal, message)
}

func NewExternalServiceError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeExternalService, message)
}

func NewConfigInvalidError(message string) *errors.ErrorEnvelope {
	return errors.NewErrorEnvelope(CodeConfigInvalid, message)
}

// Wrap builds an envelope for err carrying the request's correlation id.
func Wrap(ctx context.Context, code string, err error, message string) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(code, message)
	envelope = envelope.WithCorrelationID(extractCorrelationID(ctx))
	envelope = envelope.WithTraceID(extractCorrelationID(ctx))
	return withWrappedError(envelope, err)
}

// extractCorrelationID gets correlation ID from context, falls back to generating new UUID
func extractCorrelationID(ctx context.Context) string {
	if ctx != nil {
		if requestID := middleware.GetRequestID(ctx); requestID != "" {
			return requestID
		}
	}
	return uuid.New().String()
}

// EnsureEnvelope normalizes any error into a gofulmen ErrorEnvelope.
func EnsureEnvelope(err error) *errors.ErrorEnvelope {
	if err == nil {
		env := errors.NewErrorEnvelope(CodeInternal, "unexpected nil error")
		env, _ = env.WithSeverity(errors.SeverityCritical)
		return env
	}

	if envelope, ok := err.(*errors.ErrorEnvelope); ok && envelope != nil {
		return envelope
	}

	if pe, ok := core.AsPlatformError(err); ok {
		return PlatformEnvelope(pe)
	}

	env := errors.NewErrorEnvelope(CodeInternal, "unexpected error")
	env, _ = env.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	env, _ = env.WithSeverity(errors.SeverityHigh)
	return env
}

// EnsureCorrelationID attaches a correlation ID to the envelope using the context when available.
func EnsureCorrelationID(envelope *errors.ErrorEnvelope, ctx context.Context) *errors.ErrorEnvelope {
	if envelope == nil {
		return nil
	}

	if envelope.CorrelationID != "" {
		return envelope
	}

	var correlationID string
	if ctx != nil {
		correlationID = middleware.GetRequestID(ctx)
	}

	if correlationID == "" {
		correlationID = "fallback-" + errors.GenerateCorrelationID()
	}

	return envelope.WithCorrelationID(correlationID)
}

// HTTPStatusFromEnvelope resolves the HTTP status code corresponding to an error envelope.
func HTTPStatusFromEnvelope(envelope *errors.ErrorEnvelope) int {
	if envelope == nil {
		return http.StatusInternalServerError
	}
	return HTTPStatusFromCode(envelope.Code)
}

// HTTPStatusFromCode resolves the HTTP status code corresponding to an error code.
func HTTPStatusFromCode(code string) int {
	switch code {
	case CodeInvalidInput, "VALIDATION_FAILED":
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeExternalService:
		return http.StatusBadGateway
	case CodeNotImplemented:
		return http.StatusNotImplemented
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeForKind maps a platform error kind to its envelope code.
func CodeForKind(kind core.ErrorKind) string {
	switch kind {
	case core.KindInput:
		return CodeInvalidInput
	case core.KindNotFound:
		return CodeNotFound
	case core.KindPlatform:
		return CodeExternalService
	case core.KindConfig:
		return CodeConfigInvalid
	case core.KindUnimplemented:
		return CodeNotImplemented
	case core.KindRateLimited:
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

// PlatformEnvelope converts a platform error into an envelope for logging and metrics.
func PlatformEnvelope(pe *core.PlatformError) *errors.ErrorEnvelope {
	envelope := errors.NewErrorEnvelope(CodeForKind(pe.Kind), pe.Title)

	contextData := map[string]interface{}{
		"platform":    string(pe.Platform),
		"kind":        string(pe.Kind),
		"http_status": pe.StatusCode,
	}
	if pe.Message != "" {
		contextData["detail"] = pe.Message
	}
	if pe.Cause != nil {
		contextData["wrapped_error"] = pe.Cause.Error()
	}
	if updated, err := envelope.WithContext(contextData); err == nil {
		envelope = updated
	}

	// Caller mistakes keep the default severity and log at info.
	switch {
	case pe.StatusCode >= http.StatusInternalServerError:
		if updated, err := envelope.WithSeverity(errors.SeverityHigh); err == nil {
			envelope = updated
		}
	case pe.Kind == core.KindPlatform || pe.Kind == core.KindRateLimited:
		if updated, err := envelope.WithSeverity(errors.SeverityMedium); err == nil {
			envelope = updated
		}
	}
	return envelope
}

func withWrappedError(envelope *errors.ErrorEnvelope, err error) *errors.ErrorEnvelope {
	if envelope == nil || err == nil {
		return envelope
	}

	updated, updateErr := envelope.WithContext(map[string]interface{}{
		"wrapped_error": err.Error(),
	})
	if updateErr != nil {
		return envelope
	}
	return updated
}

// ResponseDetails constructs API-safe details map from envelope details.
// Context stays server-side.
func ResponseDetails(envelope *errors.ErrorEnvelope) map[string]interface{} {
	if envelope == nil || len(envelope.Details) == 0 {
		return nil
	}

	details := make(map[string]interface{}, len(envelope.Details))
	for key, value := range envelope.Details {
		details[key] = value
	}
	return details
}

// HTTPErrorDetail captures the error body returned to callers.
type HTTPErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// HTTPErrorResponse wraps HTTPErrorDetail in the standard envelope structure.
type HTTPErrorResponse struct {
	Error HTTPErrorDetail `json:"error"`
}

// PlatformErrorResponse is the error body returned from /api routes.
type PlatformErrorResponse struct {
	Error        string   `json:"error"`
	Message      string   `json:"message,omitempty"`
	Platform     string   `json:"platform,omitempty"`
	ValidActions []string `json:"validActions,omitempty"`
}

// RespondWithError normalizes the supplied error and writes a JSON response.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithEnvelope(w, r, EnsureEnvelope(err))
}

// RespondWithEnvelope finalizes the provided envelope, logging and emitting metrics.
func RespondWithEnvelope(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope) {
	if w == nil {
		return
	}

	if r != nil {
		envelope = EnsureCorrelationID(envelope, r.Context())
	} else {
		envelope = EnsureCorrelationID(envelope, nil)
	}

	statusCode := HTTPStatusFromEnvelope(envelope)

	response := HTTPErrorResponse{
		Error: HTTPErrorDetail{
			Code:      envelope.Code,
			Message:   envelope.Message,
			Details:   ResponseDetails(envelope),
			RequestID: envelope.CorrelationID,
		},
	}

	logHTTPError(envelope, statusCode)
	emitErrorMetrics(r, envelope, statusCode, "")

	writeJSON(w, statusCode, response)
}

// RespondWithPlatformError writes the gateway error body for a failed action.
// Normalized errors keep their status, title and remote message; anything
// else is reported as a generic 500.
func RespondWithPlatformError(w http.ResponseWriter, r *http.Request, platform core.Platform, err error) {
	if w == nil {
		return
	}

	var ctx context.Context
	if r != nil {
		ctx = r.Context()
	}

	var (
		envelope   *errors.ErrorEnvelope
		statusCode int
		response   PlatformErrorResponse
	)

	if pe, ok := core.AsPlatformError(err); ok {
		envelope = PlatformEnvelope(pe)
		statusCode = pe.StatusCode
		if statusCode == 0 {
			statusCode = http.StatusBadRequest
		}
		response = PlatformErrorResponse{
			Error:        pe.Title,
			Message:      pe.Message,
			Platform:     string(pe.Platform),
			ValidActions: pe.ValidActions,
		}
	} else {
		envelope = Wrap(ctx, CodeInternal, err, InternalErrorTitle)
		envelope, _ = envelope.WithSeverity(errors.SeverityHigh)
		statusCode = http.StatusInternalServerError
		response = PlatformErrorResponse{
			Error:    InternalErrorTitle,
			Message:  InternalErrorMessage,
			Platform: string(platform),
		}
	}

	envelope = EnsureCorrelationID(envelope, ctx)
	logHTTPError(envelope, statusCode)
	emitErrorMetrics(r, envelope, statusCode, response.Platform)

	writeJSON(w, statusCode, response)
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func logHTTPError(envelope *errors.ErrorEnvelope, statusCode int) {
	if observability.ServerLogger == nil || envelope == nil {
		return
	}

	fields := []zap.Field{
		zap.String("error_code", envelope.Code),
		zap.Int("http_status", statusCode),
	}

	if envelope.Severity != "" {
		fields = append(fields, zap.String("severity", string(envelope.Severity)))
	}

	for key, value := range envelope.Context {
		fields = append(fields, zap.Any(key, value))
	}

	if envelope.CorrelationID != "" {
		fields = append(fields, zap.String("request_id", envelope.CorrelationID))
	}

	switch envelope.Severity {
	case errors.SeverityCritical, errors.SeverityHigh:
		observability.ServerLogger.Error(envelope.Message, fields...)
	case errors.SeverityMedium:
		observability.ServerLogger.Warn(envelope.Message, fields...)
	default:
		observability.ServerLogger.Info(envelope.Message, fields...)
	}
}

func emitErrorMetrics(r *http.Request, envelope *errors.ErrorEnvelope, statusCode int, platform string) {
	if envelope == nil {
		return
	}

	metrics.RecordError(envelope.Code, statusCode, platform)
	if r != nil {
		metrics.RecordErrorByEndpoint(middleware.EndpointPattern(r), envelope.Code)
	}
}
