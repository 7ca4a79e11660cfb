package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a gateway failure.
type ErrorKind string

const (
	KindInput         ErrorKind = "input"
	KindNotFound      ErrorKind = "not_found"
	KindPlatform      ErrorKind = "platform"
	KindConfig        ErrorKind = "config"
	KindUnimplemented ErrorKind = "unimplemented"
	KindRateLimited   ErrorKind = "rate_limited"
)

// PlatformError is a normalized, platform-tagged failure that carries the
// HTTP status it should surface with.
type PlatformError struct {
	Kind         ErrorKind
	Platform     Platform
	StatusCode   int
	Title        string
	Message      string
	ValidActions []string
	Cause        error
}

func (e *PlatformError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Platform, e.Title)
	}
	return fmt.Sprintf("%s: %s: %s", e.Platform, e.Title, e.Message)
}

func (e *PlatformError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// AsPlatformError extracts a PlatformError from an error chain.
func AsPlatformError(err error) (*PlatformError, bool) {
	var pe *PlatformError
	if errors.As(err, &pe) && pe != nil {
		return pe, true
	}
	return nil, false
}

// RemoteMessager is implemented by errors that carry the upstream API's own complaint.
type RemoteMessager interface {
	RemoteMessage() string
}

// NewInputError reports caller input that was rejected before any network call.
func NewInputError(platform Platform, title, message string) *PlatformError {
	return &PlatformError{
		Kind:       KindInput,
		Platform:   platform,
		StatusCode: http.StatusBadRequest,
		Title:      title,
		Message:    message,
	}
}

// NewMissingParamError reports an absent required parameter.
func NewMissingParamError(platform Platform, names ...string) *PlatformError {
	msg := fmt.Sprintf("%s is required", strings.Join(names, " or "))
	return NewInputError(platform, "Missing required parameter", msg)
}

// NewInvalidActionError reports an action outside the platform whitelist.
func NewInvalidActionError(platform Platform, action string, valid []string) *PlatformError {
	msg := fmt.Sprintf("Valid actions: %s", strings.Join(valid, ", "))
	if action != "" {
		msg = fmt.Sprintf("Unknown action %q. %s", action, msg)
	}
	err := NewInputError(platform, "Invalid action", msg)
	err.ValidActions = append([]string(nil), valid...)
	return err
}

// NewNotFoundError reports an entity the upstream API could not find.
func NewNotFoundError(platform Platform, title string) *PlatformError {
	return &PlatformError{
		Kind:       KindNotFound,
		Platform:   platform,
		StatusCode: http.StatusNotFound,
		Title:      title,
	}
}

// NewPlatformError wraps an upstream failure. The remote complaint is
// surfaced as the message when the cause carries one.
func NewPlatformError(platform Platform, cause error) *PlatformError {
	message := ""
	var rm RemoteMessager
	if errors.As(cause, &rm) {
		message = rm.RemoteMessage()
	}
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &PlatformError{
		Kind:       KindPlatform,
		Platform:   platform,
		StatusCode: http.StatusBadRequest,
		Title:      platform.DisplayName() + " API error",
		Message:    message,
		Cause:      cause,
	}
}

// NewConfigError reports missing server-side configuration.
func NewConfigError(platform Platform, message string) *PlatformError {
	return &PlatformError{
		Kind:       KindConfig,
		Platform:   platform,
		StatusCode: http.StatusInternalServerError,
		Title:      "Configuration error",
		Message:    message,
	}
}

// NewUnimplementedError reports an intentionally unsupported action.
func NewUnimplementedError(platform Platform, message string) *PlatformError {
	return &PlatformError{
		Kind:       KindUnimplemented,
		Platform:   platform,
		StatusCode: http.StatusNotImplemented,
		Title:      "Not implemented",
		Message:    message,
	}
}

// NewRateLimitedError reports a self-throttle wait that exceeded its bound.
func NewRateLimitedError(platform Platform, cause error) *PlatformError {
	return &PlatformError{
		Kind:       KindRateLimited,
		Platform:   platform,
		StatusCode: http.StatusTooManyRequests,
		Title:      "Rate limit exceeded",
		Message:    fmt.Sprintf("%s request budget exhausted, retry later", platform.DisplayName()),
		Cause:      cause,
	}
}
