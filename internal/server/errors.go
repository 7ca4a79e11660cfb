package server

import (
	"net/http"

	"github.com/socialgate/socialgate/internal/core"
	apperrors "github.com/socialgate/socialgate/internal/errors"
)

// HandleError writes the envelope body used by the operational routes.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

// HandlePlatformError writes the error body used by the /api routes.
func HandlePlatformError(w http.ResponseWriter, r *http.Request, platform core.Platform, err error) {
	apperrors.RespondWithPlatformError(w, r, platform, err)
}
