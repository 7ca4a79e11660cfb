// Package config provides centralized configuration management for socialgate.
// Values are layered through viper, decoded with mapstructure and checked
// with validator before any component sees them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/engine"
)

const (
	// StoreMemory keeps limiter windows in process memory.
	StoreMemory = "memory"
	// StoreRedis shares limiter windows through Redis.
	StoreRedis = "redis"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex

	validate = validator.New()
)

// DefaultBaseURLs are the production upstream endpoints.
var DefaultBaseURLs = map[core.Platform]string{
	core.PlatformFacebook:  "https://graph.facebook.com/v18.0",
	core.PlatformInstagram: "https://graph.instagram.com",
	core.PlatformTwitter:   "https://api.twitter.com/2",
	core.PlatformYouTube:   "https://www.googleapis.com/youtube/v3",
}

// SetDefaults registers every known key so env overrides are visible to Load.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Health check defaults
	v.SetDefault("health.enabled", true)

	v.SetDefault("rate_limit.store", StoreMemory)
	v.SetDefault("rate_limit.max_wait", "0s")
	v.SetDefault("rate_limit.key_prefix", "socialgate:ratelimit")
	v.SetDefault("redis.url", "")

	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", "60s")
	v.SetDefault("breaker.timeout", "30s")
	v.SetDefault("breaker.failure_threshold", 5)

	v.SetDefault("inbound_limit.enabled", false)
	v.SetDefault("inbound_limit.requests", 120)
	v.SetDefault("inbound_limit.window", "1m")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.max_age", 300)

	for _, p := range core.Platforms {
		limit := engine.DefaultLimits[p]
		prefix := "platforms." + string(p) + "."
		v.SetDefault(prefix+"base_url", DefaultBaseURLs[p])
		v.SetDefault(prefix+"max_requests", limit.RequestsPerWindow)
		v.SetDefault(prefix+"window", limit.WindowDuration.String())
		v.SetDefault(prefix+"timeout", "15s")
	}
}

// BindEnv wires SOCIALGATE_* variables onto dotted keys.
func BindEnv(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(strings.TrimSuffix(prefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load decodes and validates the configuration held by v. It is safe to
// call again on SIGHUP.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate checks struct tags plus cross-field rules.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.RateLimit.Store == StoreRedis && strings.TrimSpace(cfg.Redis.URL) == "" {
		return errors.New("invalid config: redis.url is required when rate_limit.store is redis")
	}
	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath(configName string) string {
	configDir := gfconfig.GetAppConfigDir(configName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}
