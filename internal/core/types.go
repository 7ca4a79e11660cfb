package core

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies an upstream social-media API.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformYouTube   Platform = "youtube"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{
	PlatformFacebook,
	PlatformInstagram,
	PlatformTwitter,
	PlatformYouTube,
}

// ParsePlatform normalizes a platform name.
func ParsePlatform(value string) (Platform, error) {
	normalized := Platform(strings.ToLower(strings.TrimSpace(value)))
	for _, p := range Platforms {
		if p == normalized {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform: %s", value)
}

// DisplayName returns the human-facing platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformFacebook:
		return "Facebook"
	case PlatformInstagram:
		return "Instagram"
	case PlatformTwitter:
		return "Twitter"
	case PlatformYouTube:
		return "YouTube"
	default:
		return string(p)
	}
}

// Params carries caller-supplied action parameters.
type Params map[string]string

// Get returns the trimmed value for key.
func (p Params) Get(key string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p[key])
}

// GetDefault returns the value for key or fallback when empty.
func (p Params) GetDefault(key, fallback string) string {
	if value := p.Get(key); value != "" {
		return value
	}
	return fallback
}

// Result is the normalized outcome of a platform action.
type Result struct {
	Data       any
	Pagination map[string]any
	Includes   map[string]any
}

// TimestampLayout renders instants as ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Envelope is the success response body.
type Envelope struct {
	Success    bool           `json:"success"`
	Data       any            `json:"data"`
	Platform   Platform       `json:"platform"`
	Timestamp  string         `json:"timestamp"`
	Pagination map[string]any `json:"pagination,omitempty"`
	Includes   map[string]any `json:"includes,omitempty"`
}

// NewEnvelope wraps a result for the given platform.
func NewEnvelope(platform Platform, result *Result, at time.Time) *Envelope {
	env := &Envelope{
		Success:   true,
		Platform:  platform,
		Timestamp: at.UTC().Format(TimestampLayout),
	}
	if result != nil {
		env.Data = result.Data
		env.Pagination = result.Pagination
		env.Includes = result.Includes
	}
	return env
}
