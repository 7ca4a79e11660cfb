package cmd

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/config"
	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/core/apiclient"
	"github.com/socialgate/socialgate/internal/core/engine"
	"github.com/socialgate/socialgate/internal/core/platform"
	"github.com/socialgate/socialgate/internal/core/store"
	"github.com/socialgate/socialgate/internal/observability"
)

// buildGateway opens the window store and registers every platform with its
// limiter and upstream transport. The caller closes the returned store.
func buildGateway(ctx context.Context, cfg *config.Config) (*engine.Gateway, *store.Store, error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open rate limit store: %w", err)
	}

	g := engine.NewGateway()
	for _, p := range core.Platforms {
		if err := registerPlatform(g, cfg, st, p); err != nil {
			_ = st.Close()
			return nil, nil, err
		}
	}
	return g, st, nil
}

func registerPlatform(g *engine.Gateway, cfg *config.Config, st *store.Store, p core.Platform) error {
	pc := cfg.Platforms.For(p)

	limiter, err := engine.NewRateLimiter(string(p), engine.RateLimit{
		RequestsPerWindow: pc.MaxRequests,
		WindowDuration:    pc.Window,
	}, st.Windows)
	if err != nil {
		return fmt.Errorf("%s rate limit: %w", p, err)
	}
	limiter.MaxWait = cfg.RateLimit.MaxWait

	upstream := platform.Upstream{
		BaseURL:    pc.BaseURL,
		HTTPClient: &http.Client{Timeout: pc.Timeout},
	}
	if cfg.Breaker.Enabled {
		upstream.Breaker = apiclient.NewBreaker(p, apiclient.BreakerSettings{
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         cfg.Breaker.Interval,
			Timeout:          cfg.Breaker.Timeout,
			FailureThreshold: cfg.Breaker.FailureThreshold,
		})
	}

	handler, err := platform.New(p, upstream, nil)
	if err != nil {
		return err
	}
	g.Register(handler, limiter)

	if logger := observability.Logger(); logger != nil {
		logger.Debug("Registered platform",
			zap.String("platform", string(p)),
			zap.String("base_url", pc.BaseURL),
			zap.Int("max_requests", pc.MaxRequests),
			zap.Duration("window", pc.Window),
			zap.String("store", st.Driver()),
			zap.Bool("breaker", cfg.Breaker.Enabled))
	}
	return nil
}
