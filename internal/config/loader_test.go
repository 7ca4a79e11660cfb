package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialgate/socialgate/internal/core"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	BindEnv(v, "SOCIALGATE_")
	return v
}

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		cfg, err := Load(newTestViper(t))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		// Verify server defaults
		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

		assert.Equal(t, StoreMemory, cfg.RateLimit.Store)
		assert.Zero(t, cfg.RateLimit.MaxWait)
		assert.False(t, cfg.Breaker.Enabled)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)

		twitter := cfg.Platforms.For(core.PlatformTwitter)
		assert.Equal(t, "https://api.twitter.com/2", twitter.BaseURL)
		assert.Equal(t, 300, twitter.MaxRequests)
		assert.Equal(t, 15*time.Minute, twitter.Window)

		youtube := cfg.Platforms.For(core.PlatformYouTube)
		assert.Equal(t, 400, youtube.MaxRequests)
		assert.Equal(t, time.Hour, youtube.Window)

		assert.Same(t, cfg, GetConfig())
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("SOCIALGATE_PLATFORMS_TWITTER_MAX_REQUESTS", "10")
		t.Setenv("SOCIALGATE_PLATFORMS_TWITTER_WINDOW", "1m")
		t.Setenv("SOCIALGATE_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

		cfg, err := Load(newTestViper(t))
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Platforms.Twitter.MaxRequests)
		assert.Equal(t, time.Minute, cfg.Platforms.Twitter.Window)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	})

	t.Run("RejectsZeroBudget", func(t *testing.T) {
		v := newTestViper(t)
		v.Set("platforms.facebook.max_requests", 0)

		_, err := Load(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MaxRequests")
	})

	t.Run("RedisStoreNeedsURL", func(t *testing.T) {
		v := newTestViper(t)
		v.Set("rate_limit.store", StoreRedis)

		_, err := Load(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis.url")

		v.Set("redis.url", "redis://localhost:6379/0")
		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, StoreRedis, cfg.RateLimit.Store)
	})

	t.Run("UnknownStore", func(t *testing.T) {
		v := newTestViper(t)
		v.Set("rate_limit.store", "memcached")

		_, err := Load(v)
		require.Error(t, err)
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SOCIALGATE_TEST_DOTENV=from-file\n"), 0o600))

	t.Setenv("SOCIALGATE_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("SOCIALGATE_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("SOCIALGATE_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
