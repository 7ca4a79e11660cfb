package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
	apperrors "github.com/socialgate/socialgate/internal/errors"
)

// maxBodyBytes caps POST parameter bodies.
const maxBodyBytes = 1 << 20

var allowedMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")

// Dispatcher runs platform actions. *engine.Gateway implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, platform core.Platform, action string, params core.Params) (*core.Envelope, error)
	Describe(ctx context.Context) []engine.PlatformInfo
}

// PlatformHandler serves /api/{platform} and /api/platforms.
type PlatformHandler struct {
	Gateway Dispatcher
}

func NewPlatformHandler(gateway Dispatcher) *PlatformHandler {
	return &PlatformHandler{Gateway: gateway}
}

// PlatformsResponse is the /api/platforms body.
type PlatformsResponse struct {
	Platforms []engine.PlatformInfo `json:"platforms"`
}

// ServeAction reads the action and its parameters from the query string
// (GET) or a JSON object body (POST) and writes the success envelope or the
// platform error body.
func (h *PlatformHandler) ServeAction(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	platform, err := core.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		respondWithPlatformError(w, r, "", core.NewNotFoundError("", "Unknown platform"))
		return
	}

	var params core.Params
	switch r.Method {
	case http.MethodGet:
		params = queryParams(r)
	case http.MethodPost:
		params, err = bodyParams(w, r)
		if err != nil {
			respondWithPlatformError(w, r, platform,
				core.NewInputError(platform, "Invalid request body", err.Error()))
			return
		}
	default:
		w.Header().Set("Allow", allowedMethods)
		writeJSON(w, http.StatusMethodNotAllowed, apperrors.PlatformErrorResponse{
			Error:    "Method not allowed",
			Platform: string(platform),
		})
		return
	}

	envelope, err := h.Gateway.Dispatch(r.Context(), platform, params.Get("action"), params)
	if err != nil {
		respondWithPlatformError(w, r, platform, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

// ListPlatforms describes every platform, its actions and its throttle usage.
func (h *PlatformHandler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PlatformsResponse{Platforms: h.Gateway.Describe(r.Context())})
}

func queryParams(r *http.Request) core.Params {
	query := r.URL.Query()
	params := make(core.Params, len(query))
	for key, values := range query {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	return params
}

// bodyParams decodes a JSON object and flattens its values to strings.
// An empty body yields no parameters.
func bodyParams(w http.ResponseWriter, r *http.Request) (core.Params, error) {
	if r.Body == nil {
		return core.Params{}, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return core.Params{}, nil
	}

	decoder := json.NewDecoder(strings.NewReader(string(body)))
	decoder.UseNumber()
	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("body must be a JSON object: %w", err)
	}

	params := make(core.Params, len(raw))
	for key, value := range raw {
		s, ok, err := stringifyParam(value)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", key, err)
		}
		if ok {
			params[key] = s
		}
	}
	return params, nil
}

func stringifyParam(value any) (string, bool, error) {
	switch v := value.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case json.Number:
		return v.String(), true, nil
	case bool:
		return strconv.FormatBool(v), true, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", false, err
		}
		return string(encoded), true, nil
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
