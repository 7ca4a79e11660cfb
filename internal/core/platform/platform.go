// Package platform implements the per-platform action tables and the pure
// formatters that normalize each platform's JSON.
package platform

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/apiclient"
	"github.com/socialgate/socialgate/internal/core/engine"
)

// Credential environment variables, read on every request.
const (
	EnvTwitterBearerToken = "TWITTER_BEARER_TOKEN"
	EnvYouTubeAPIKey      = "YOUTUBE_API_KEY"
)

// Default upstream base URLs.
const (
	FacebookBaseURL  = "https://graph.facebook.com/v18.0"
	InstagramBaseURL = "https://graph.instagram.com"
	TwitterBaseURL   = "https://api.twitter.com/2"
	YouTubeBaseURL   = "https://www.googleapis.com/youtube/v3"
)

// Upstream holds the transport settings shared by every call to one platform.
// Each action builds its own apiclient.Client from it.
type Upstream struct {
	BaseURL    string
	HTTPClient *http.Client
	Breaker    *gobreaker.CircuitBreaker[[]byte]
}

func (u Upstream) client(platform core.Platform, fallback string, headers map[string]string) *apiclient.Client {
	base := strings.TrimRight(strings.TrimSpace(u.BaseURL), "/")
	if base == "" {
		base = fallback
	}
	c := apiclient.New(platform, base, headers)
	if u.HTTPClient != nil {
		c.HTTPClient = u.HTTPClient
	}
	c.Breaker = u.Breaker
	return c
}

// EnvFunc looks up a credential. os.Getenv is used when nil.
type EnvFunc func(key string) string

func (f EnvFunc) get(key string) string {
	if f == nil {
		return strings.TrimSpace(os.Getenv(key))
	}
	return strings.TrimSpace(f(key))
}

// DefaultBaseURL returns the public API root for platform.
func DefaultBaseURL(platform core.Platform) string {
	switch platform {
	case core.PlatformFacebook:
		return FacebookBaseURL
	case core.PlatformInstagram:
		return InstagramBaseURL
	case core.PlatformTwitter:
		return TwitterBaseURL
	case core.PlatformYouTube:
		return YouTubeBaseURL
	default:
		return ""
	}
}

// New returns the action table for platform.
func New(platform core.Platform, upstream Upstream, env EnvFunc) (engine.Handler, error) {
	switch platform {
	case core.PlatformFacebook:
		return &Facebook{Upstream: upstream}, nil
	case core.PlatformInstagram:
		return &Instagram{Upstream: upstream}, nil
	case core.PlatformTwitter:
		return &Twitter{Upstream: upstream, Env: env}, nil
	case core.PlatformYouTube:
		return &YouTube{Upstream: upstream, Env: env}, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}

func requireAccessToken(platform core.Platform, params core.Params) error {
	if params.Get("access_token") == "" {
		return core.NewInputError(platform, "Access token is required", "access_token is required")
	}
	return nil
}

// boundedInt parses value, falling back to def and clamping to [lo, hi].
func boundedInt(value string, def, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		n = def
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// setIf adds key to params only when value is non-empty.
func setIf(params map[string]string, key, value string) {
	if value != "" {
		params[key] = value
	}
}

// flexInt decodes counters that arrive as numbers or decimal strings.
// Anything unparsable counts as zero.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	if fl, err := strconv.ParseFloat(raw, 64); err == nil {
		*f = flexInt(int64(fl))
		return nil
	}
	*f = 0
	return nil
}

// orZero maps an absent value to 0.
func orZero(value any) any {
	if value == nil {
		return 0
	}
	return value
}
