package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
)

type echoHandler struct {
	seen core.Params
}

func (e *echoHandler) Platform() core.Platform { return core.PlatformTwitter }

func (e *echoHandler) Authorize(core.Params) error { return nil }

func (e *echoHandler) Actions() []engine.Action {
	return []engine.Action{
		{Name: "search_tweets", Required: []string{"query"}, Run: func(ctx context.Context, params core.Params) (*core.Result, error) {
			e.seen = params
			return &core.Result{Data: []string{params.Get("query")}}, nil
		}},
		{Name: "boom", Run: func(ctx context.Context, params core.Params) (*core.Result, error) {
			panic("unreachable in these tests")
		}},
	}
}

func newPlatformRouter(t *testing.T) (http.Handler, *echoHandler) {
	t.Helper()
	h := &echoHandler{}
	g := engine.NewGateway()
	g.Register(h, nil)
	g.Clock = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	ph := NewPlatformHandler(g)
	r := chi.NewRouter()
	r.Get("/api/platforms", ph.ListPlatforms)
	r.HandleFunc("/api/{platform}", ph.ServeAction)
	return r, h
}

func TestServeActionGET(t *testing.T) {
	router, h := newPlatformRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/twitter?action=search_tweets&query=golang&query=ignored", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":["golang"],"platform":"twitter","timestamp":"2025-01-02T03:04:05.000Z"}`, rec.Body.String())
	assert.Equal(t, "golang", h.seen["query"])
}

func TestServeActionPOSTStringifiesValues(t *testing.T) {
	router, h := newPlatformRouter(t)

	body := `{"action":"search_tweets","query":"go","max_results":25,"verbose":true,"skip":null}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/twitter", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "25", h.seen["max_results"])
	assert.Equal(t, "true", h.seen["verbose"])
	_, hasSkip := h.seen["skip"]
	assert.False(t, hasSkip)
}

func TestServeActionMalformedBody(t *testing.T) {
	router, _ := newPlatformRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/twitter", strings.NewReader(`["not","an","object"]`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid request body", body["error"])
	assert.Equal(t, "twitter", body["platform"])
}

func TestServeActionUnknownPlatform(t *testing.T) {
	router, _ := newPlatformRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/myspace?action=x", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Unknown platform"}`, rec.Body.String())
}

func TestServeActionOptionsUnknownPlatform(t *testing.T) {
	router, _ := newPlatformRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/tiktok", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestServeActionUnknownAction(t *testing.T) {
	router, _ := newPlatformRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/twitter?action=trending", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid action", body["error"])
	assert.ElementsMatch(t, []any{"search_tweets", "boom"}, body["validActions"])
}

func TestServeActionOptionsAndMethodNotAllowed(t *testing.T) {
	router, _ := newPlatformRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/twitter", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/twitter", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Allow"))
	assert.JSONEq(t, `{"error":"Method not allowed","platform":"twitter"}`, rec.Body.String())
}

func TestListPlatforms(t *testing.T) {
	router, _ := newPlatformRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/platforms", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body PlatformsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Platforms, 1)
	assert.Equal(t, core.PlatformTwitter, body.Platforms[0].Platform)
	assert.Equal(t, []string{"search_tweets", "boom"}, body.Platforms[0].Actions)
}
