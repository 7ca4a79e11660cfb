package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/socialgate/socialgate/internal/config"
	"github.com/socialgate/socialgate/internal/core/engine"
)

// Store owns the window backend shared by every platform limiter.
type Store struct {
	Windows engine.WindowStore
	driver  string
	closer  func() error
	pinger  func(ctx context.Context) error
}

// Open initializes the window store selected by cfg.RateLimit.Store.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	driver := config.StoreMemory
	if cfg != nil && strings.TrimSpace(cfg.RateLimit.Store) != "" {
		driver = strings.TrimSpace(cfg.RateLimit.Store)
	}

	switch driver {
	case config.StoreMemory:
		return &Store{Windows: NewMemoryWindowStore(), driver: driver}, nil
	case config.StoreRedis:
		rs, err := OpenRedisWindowStore(ctx, cfg.Redis.URL, cfg.RateLimit.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return &Store{Windows: rs, driver: driver, closer: rs.Close, pinger: rs.Ping}, nil
	default:
		return nil, fmt.Errorf("unsupported rate limit store: %s", driver)
	}
}

// Driver reports the active backend name.
func (s *Store) Driver() string {
	if s == nil {
		return ""
	}
	return s.driver
}

// CheckHealth pings remote backends; the memory backend is always healthy.
func (s *Store) CheckHealth(ctx context.Context) error {
	if s == nil || s.pinger == nil {
		return nil
	}
	return s.pinger(ctx)
}

// Close releases backend resources.
func (s *Store) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer()
}
