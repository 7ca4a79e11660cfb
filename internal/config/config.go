package config

import (
	"time"

	"github.com/socialgate/socialgate/internal/core"
)

// Config represents the complete application configuration.
// Sources, lowest precedence first: built-in defaults, config.yaml,
// a .env file, then SOCIALGATE_* environment variables and flags.
type Config struct {
	Server    ServerConfig       `mapstructure:"server"`
	Logging   LoggingConfig      `mapstructure:"logging"`
	Metrics   MetricsConfig      `mapstructure:"metrics"`
	Health    HealthConfig       `mapstructure:"health"`
	RateLimit RateLimitConfig    `mapstructure:"rate_limit"`
	Redis     RedisConfig        `mapstructure:"redis"`
	Breaker   BreakerConfig      `mapstructure:"breaker"`
	Inbound   InboundLimitConfig `mapstructure:"inbound_limit"`
	CORS      CORSConfig         `mapstructure:"cors"`
	Platforms PlatformsConfig    `mapstructure:"platforms"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn warning error"`

	// Profile selects the logging complexity level (simple, structured)
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"gte=0,lte=65535"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// RateLimitConfig selects where the per-platform sliding windows live.
type RateLimitConfig struct {
	// Store is "memory" (per process) or "redis" (shared across instances).
	Store string `mapstructure:"store" validate:"oneof=memory redis"`

	// MaxWait bounds how long a caller may be held. Zero waits as long as needed.
	MaxWait time.Duration `mapstructure:"max_wait" validate:"gte=0"`

	KeyPrefix string `mapstructure:"key_prefix"`
}

// RedisConfig configures the shared window store.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// BreakerConfig configures the optional upstream circuit breaker.
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold" validate:"omitempty,min=1"`
}

// InboundLimitConfig guards the /api routes against a single noisy client.
type InboundLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests" validate:"min=1"`
	Window   time.Duration `mapstructure:"window" validate:"gt=0"`
}

// CORSConfig controls preflight negotiation.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAge         int      `mapstructure:"max_age" validate:"gte=0"`
}

// PlatformConfig describes one upstream API and its self-imposed budget.
type PlatformConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	MaxRequests int           `mapstructure:"max_requests" validate:"min=1"`
	Window      time.Duration `mapstructure:"window" validate:"gt=0"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// PlatformsConfig groups per-platform settings.
type PlatformsConfig struct {
	Facebook  PlatformConfig `mapstructure:"facebook"`
	Instagram PlatformConfig `mapstructure:"instagram"`
	Twitter   PlatformConfig `mapstructure:"twitter"`
	YouTube   PlatformConfig `mapstructure:"youtube"`
}

// For returns the settings for platform.
func (p PlatformsConfig) For(platform core.Platform) PlatformConfig {
	switch platform {
	case core.PlatformFacebook:
		return p.Facebook
	case core.PlatformInstagram:
		return p.Instagram
	case core.PlatformTwitter:
		return p.Twitter
	case core.PlatformYouTube:
		return p.YouTube
	default:
		return PlatformConfig{}
	}
}
