package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/socialgate/socialgate/internal/core"
)

var (
	// ErrInvalidLimit is returned for a limit that could never admit a call.
	ErrInvalidLimit = errors.New("rate limit must allow at least one request per window")

	// ErrWaitExceeded is returned when admission would take longer than MaxWait.
	ErrWaitExceeded = errors.New("rate limit wait exceeds configured maximum")
)

// RateLimit represents a sliding-window budget.
type RateLimit struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// DefaultLimits are the self-imposed per-platform budgets.
var DefaultLimits = map[core.Platform]RateLimit{
	core.PlatformFacebook:  {RequestsPerWindow: 200, WindowDuration: time.Hour},
	core.PlatformInstagram: {RequestsPerWindow: 200, WindowDuration: time.Hour},
	core.PlatformTwitter:   {RequestsPerWindow: 300, WindowDuration: 15 * time.Minute},
	core.PlatformYouTube:   {RequestsPerWindow: 400, WindowDuration: time.Hour},
}

// Validate rejects limits that would block forever.
func (l RateLimit) Validate() error {
	if l.RequestsPerWindow <= 0 {
		return fmt.Errorf("%w: requests=%d", ErrInvalidLimit, l.RequestsPerWindow)
	}
	if l.WindowDuration <= 0 {
		return fmt.Errorf("%w: window=%s", ErrInvalidLimit, l.WindowDuration)
	}
	return nil
}

// WindowStore records admitted call instants for a sliding window.
type WindowStore interface {
	// Admit drops entries with now-t >= window. When fewer than limit
	// remain it records now and reports true; otherwise it reports the
	// oldest remaining instant.
	Admit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, time.Time, error)
	// Usage counts entries younger than window.
	Usage(ctx context.Context, key string, now time.Time, window time.Duration) (int, error)
	// Reset forgets every entry for key.
	Reset(ctx context.Context, key string) error
	Name() string
}

// RateLimiter throttles outbound calls for one platform. Callers over
// budget are delayed, not rejected, unless MaxWait is set.
type RateLimiter struct {
	Key     string
	Limit   RateLimit
	Store   WindowStore
	MaxWait time.Duration
	Clock   func() time.Time
	Sleep   func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter validates limit and returns a limiter bound to store.
func NewRateLimiter(key string, limit RateLimit, store WindowStore) (*RateLimiter, error) {
	if err := limit.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("rate limiter requires a window store")
	}
	return &RateLimiter{Key: key, Limit: limit, Store: store}, nil
}

// Wait blocks until a call is admitted and returns how long it waited.
func (r *RateLimiter) Wait(ctx context.Context) (time.Duration, error) {
	if r == nil || r.Store == nil {
		return 0, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.Limit.Validate(); err != nil {
		return 0, err
	}

	var waited time.Duration
	for {
		now := r.now()
		admitted, oldest, err := r.Store.Admit(ctx, r.Key, now, r.Limit.WindowDuration, r.Limit.RequestsPerWindow)
		if err != nil {
			return waited, err
		}
		if admitted {
			return waited, nil
		}

		wait := r.Limit.WindowDuration - now.Sub(oldest)
		if wait <= 0 {
			wait = time.Millisecond
		}
		if r.MaxWait > 0 && waited+wait > r.MaxWait {
			return waited, fmt.Errorf("%w: need %s more", ErrWaitExceeded, wait.Round(time.Millisecond))
		}
		if err := r.sleep(ctx, wait); err != nil {
			return waited, err
		}
		waited += wait
	}
}

// Usage reports the calls currently counted against the window.
func (r *RateLimiter) Usage(ctx context.Context) (int, error) {
	if r == nil || r.Store == nil {
		return 0, nil
	}
	return r.Store.Usage(ctx, r.Key, r.now(), r.Limit.WindowDuration)
}

// Reset clears recorded calls.
func (r *RateLimiter) Reset(ctx context.Context) error {
	if r == nil || r.Store == nil {
		return nil
	}
	return r.Store.Reset(ctx, r.Key)
}

func (r *RateLimiter) now() time.Time {
	if r != nil && r.Clock != nil {
		return r.Clock()
	}
	return time.Now().UTC()
}

func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
