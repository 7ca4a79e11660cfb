package middleware

import (
	"net/http"
	"strconv"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSOptions configures the /api CORS policy.
type CORSOptions struct {
	AllowedOrigins []string
	MaxAge         int
}

// Methods and headers the gateway accepts cross-origin.
var (
	corsAllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsAllowedHeaders = []string{"Content-Type", "Authorization"}
)

// CORS returns the preflight and response-header middleware for the API
// routes. Preflights pass through to the route, which answers OPTIONS with
// 200. With a wildcard origin the static Access-Control headers are set
// after the cors handler runs, so every response, preflights included,
// advertises the full method list.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.Handler(cors.Options{
		AllowedOrigins:     origins,
		AllowedMethods:     corsAllowedMethods,
		AllowedHeaders:     corsAllowedHeaders,
		MaxAge:             opts.MaxAge,
		OptionsPassthrough: true,
	})

	if !containsWildcard(origins) {
		return handler
	}

	static := []func(http.Handler) http.Handler{
		chimiddleware.SetHeader("Access-Control-Allow-Origin", "*"),
		chimiddleware.SetHeader("Access-Control-Allow-Methods", strings.Join(corsAllowedMethods, ", ")),
		chimiddleware.SetHeader("Access-Control-Allow-Headers", strings.Join(corsAllowedHeaders, ", ")),
	}
	if opts.MaxAge > 0 {
		static = append(static, chimiddleware.SetHeader("Access-Control-Max-Age", strconv.Itoa(opts.MaxAge)))
	}

	return func(next http.Handler) http.Handler {
		h := next
		for i := len(static) - 1; i >= 0; i-- {
			h = static[i](h)
		}
		return handler(h)
	}
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}
