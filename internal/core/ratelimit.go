package core

import "time"

// RateLimitUsage is a point-in-time view of one platform's self-throttle.
type RateLimitUsage struct {
	Platform    Platform      `json:"platform" yaml:"platform"`
	MaxRequests int           `json:"max_requests" yaml:"max_requests"`
	Window      time.Duration `json:"-" yaml:"-"`
	WindowText  string        `json:"window" yaml:"window"`
	Used        int           `json:"used" yaml:"used"`
	Store       string        `json:"store" yaml:"store"`
}

// NewRateLimitUsage builds a usage snapshot.
func NewRateLimitUsage(platform Platform, maxRequests int, window time.Duration, used int, store string) RateLimitUsage {
	return RateLimitUsage{
		Platform:    platform,
		MaxRequests: maxRequests,
		Window:      window,
		WindowText:  window.String(),
		Used:        used,
		Store:       store,
	}
}

// Remaining reports how many calls are admissible right now.
func (u RateLimitUsage) Remaining() int {
	if u.Used >= u.MaxRequests {
		return 0
	}
	return u.MaxRequests - u.Used
}
