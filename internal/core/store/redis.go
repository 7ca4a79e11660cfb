package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// admitScript prunes, counts and conditionally records in one round trip so
// concurrent instances never over-admit. Scores are unix microseconds.
var admitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, math.ceil(window / 1000) + 1000)
  return {1, 0}
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {0, tonumber(oldest[2])}
`)

// RedisWindowStore shares sliding windows between gateway instances using
// one sorted set per platform.
type RedisWindowStore struct {
	client *redis.Client
	prefix string
}

// NewRedisWindowStore wraps an existing client.
func NewRedisWindowStore(client *redis.Client, prefix string) *RedisWindowStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "socialgate:ratelimit"
	}
	return &RedisWindowStore{client: client, prefix: prefix}
}

// OpenRedisWindowStore parses url, connects and pings.
func OpenRedisWindowStore(ctx context.Context, url, prefix string) (*RedisWindowStore, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisWindowStore(client, prefix), nil
}

// Admit runs the admission script atomically.
func (s *RedisWindowStore) Admit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, time.Time, error) {
	if s == nil || s.client == nil {
		return false, time.Time{}, errors.New("store is not initialized")
	}

	member := strconv.FormatInt(now.UnixMicro(), 10) + "-" + uuid.New().String()
	res, err := admitScript.Run(ctx, s.client, []string{s.key(key)},
		now.UnixMicro(), window.Microseconds(), limit, member).Int64Slice()
	if err != nil {
		return false, time.Time{}, fmt.Errorf("admit rate limit: %w", err)
	}
	if len(res) != 2 {
		return false, time.Time{}, fmt.Errorf("admit rate limit: unexpected reply %v", res)
	}
	if res[0] == 1 {
		return true, time.Time{}, nil
	}
	return false, time.UnixMicro(res[1]).UTC(), nil
}

// Usage counts members younger than window.
func (s *RedisWindowStore) Usage(ctx context.Context, key string, now time.Time, window time.Duration) (int, error) {
	if s == nil || s.client == nil {
		return 0, errors.New("store is not initialized")
	}
	minScore := "(" + strconv.FormatInt(now.Add(-window).UnixMicro(), 10)
	count, err := s.client.ZCount(ctx, s.key(key), minScore, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count rate limit: %w", err)
	}
	return int(count), nil
}

// Reset deletes the window for key.
func (s *RedisWindowStore) Reset(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return errors.New("store is not initialized")
	}
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("reset rate limit: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (s *RedisWindowStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("store is not initialized")
	}
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *RedisWindowStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Name identifies the backend.
func (s *RedisWindowStore) Name() string {
	return "redis"
}

func (s *RedisWindowStore) key(key string) string {
	return s.prefix + ":" + strings.TrimSpace(key)
}
