package handlers

import (
	"net/http"

	"github.com/socialgate/socialgate/internal/core"
	apperrors "github.com/socialgate/socialgate/internal/errors"
)

// Responders used by the handlers. The server injects its own so every error
// passes through one place.
var (
	httpErrorResponder     = apperrors.RespondWithError
	platformErrorResponder = apperrors.RespondWithPlatformError
)

// SetHTTPErrorResponder replaces the envelope responder. nil restores the default.
func SetHTTPErrorResponder(responder func(http.ResponseWriter, *http.Request, error)) {
	if responder == nil {
		httpErrorResponder = apperrors.RespondWithError
		return
	}
	httpErrorResponder = responder
}

// SetPlatformErrorResponder replaces the /api error responder. nil restores the default.
func SetPlatformErrorResponder(responder func(http.ResponseWriter, *http.Request, core.Platform, error)) {
	if responder == nil {
		platformErrorResponder = apperrors.RespondWithPlatformError
		return
	}
	platformErrorResponder = responder
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	httpErrorResponder(w, r, err)
}

func respondWithPlatformError(w http.ResponseWriter, r *http.Request, platform core.Platform, err error) {
	platformErrorResponder(w, r, platform, err)
}
