package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/metrics"
	"github.com/socialgate/socialgate/internal/observability"
)

// Action is one whitelisted platform operation.
type Action struct {
	Name string
	// Required keys must all be present.
	Required []string
	// AnyOf needs at least one present key.
	AnyOf []string
	// Local actions make no upstream call and are not throttled.
	Local bool
	Run   func(ctx context.Context, params core.Params) (*core.Result, error)
}

// Handler is a platform's action dispatch table.
type Handler interface {
	Platform() core.Platform
	Actions() []Action
	// Authorize reports missing credentials before any network call.
	Authorize(params core.Params) error
}

// PlatformInfo describes a registered platform for discovery endpoints.
type PlatformInfo struct {
	Platform core.Platform       `json:"platform" yaml:"platform"`
	Actions  []string            `json:"actions" yaml:"actions"`
	Limit    core.RateLimitUsage `json:"rate_limit" yaml:"rate_limit"`
}

// Gateway validates, throttles and dispatches platform actions.
type Gateway struct {
	handlers map[core.Platform]Handler
	limiters map[core.Platform]*RateLimiter
	Clock    func() time.Time
}

// NewGateway returns an empty gateway.
func NewGateway() *Gateway {
	return &Gateway{
		handlers: make(map[core.Platform]Handler),
		limiters: make(map[core.Platform]*RateLimiter),
	}
}

// Register installs a handler and its limiter. A nil limiter disables throttling.
func (g *Gateway) Register(h Handler, limiter *RateLimiter) {
	if g == nil || h == nil {
		return
	}
	g.handlers[h.Platform()] = h
	if limiter != nil {
		g.limiters[h.Platform()] = limiter
	}
}

// Limiter returns the limiter for platform.
func (g *Gateway) Limiter(platform core.Platform) *RateLimiter {
	if g == nil {
		return nil
	}
	return g.limiters[platform]
}

// Dispatch runs action for platform and wraps the result in a success envelope.
// Every returned error that carries a status is a *core.PlatformError.
func (g *Gateway) Dispatch(ctx context.Context, platform core.Platform, action string, params core.Params) (*core.Envelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if g == nil {
		return nil, errors.New("gateway is not configured")
	}

	h, ok := g.handlers[platform]
	if !ok {
		return nil, core.NewNotFoundError(platform, "Unknown platform")
	}

	result, err := g.dispatch(ctx, h, action, params)
	metrics.RecordAction(string(platform), actionLabel(h, action), outcome(err))
	if err != nil {
		if logger := observability.Logger(); logger != nil {
			logger.Debug("Platform action failed",
				zap.String("platform", string(platform)),
				zap.String("action", action),
				zap.Error(err))
		}
		return nil, err
	}

	return core.NewEnvelope(platform, result, g.now()), nil
}

func (g *Gateway) dispatch(ctx context.Context, h Handler, name string, params core.Params) (*core.Result, error) {
	platform := h.Platform()

	if err := h.Authorize(params); err != nil {
		return nil, err
	}

	action, ok := findAction(h, name)
	if !ok {
		return nil, core.NewInvalidActionError(platform, name, ActionNames(h))
	}

	for _, key := range action.Required {
		if params.Get(key) == "" {
			return nil, core.NewMissingParamError(platform, key)
		}
	}
	if len(action.AnyOf) > 0 && !anyPresent(params, action.AnyOf) {
		return nil, core.NewMissingParamError(platform, action.AnyOf...)
	}

	if limiter := g.limiters[platform]; limiter != nil && !action.Local {
		waited, err := limiter.Wait(ctx)
		metrics.RecordLimiterWait(string(platform), waited)
		if err != nil {
			if errors.Is(err, ErrWaitExceeded) {
				return nil, core.NewRateLimitedError(platform, err)
			}
			return nil, fmt.Errorf("%s rate limiter: %w", platform, err)
		}
	}

	result, err := action.Run(ctx, params)
	if err != nil {
		if pe, ok := core.AsPlatformError(err); ok {
			return nil, pe
		}
		return nil, core.NewPlatformError(platform, err)
	}
	if result == nil {
		result = &core.Result{}
	}
	return result, nil
}

// Describe lists every registered platform with its actions and current usage.
func (g *Gateway) Describe(ctx context.Context) []PlatformInfo {
	if g == nil {
		return nil
	}

	infos := make([]PlatformInfo, 0, len(g.handlers))
	for _, p := range core.Platforms {
		h, ok := g.handlers[p]
		if !ok {
			continue
		}
		info := PlatformInfo{Platform: p, Actions: ActionNames(h)}
		if limiter := g.limiters[p]; limiter != nil {
			used, err := limiter.Usage(ctx)
			if err != nil {
				used = -1
			}
			store := ""
			if limiter.Store != nil {
				store = limiter.Store.Name()
			}
			info.Limit = core.NewRateLimitUsage(p, limiter.Limit.RequestsPerWindow, limiter.Limit.WindowDuration, used, store)
		}
		infos = append(infos, info)
	}
	return infos
}

// ActionNames lists a handler's whitelist in declaration order.
func ActionNames(h Handler) []string {
	actions := h.Actions()
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, a.Name)
	}
	return names
}

func findAction(h Handler, name string) (Action, bool) {
	for _, a := range h.Actions() {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

func anyPresent(params core.Params, keys []string) bool {
	for _, key := range keys {
		if params.Get(key) != "" {
			return true
		}
	}
	return false
}

func actionLabel(h Handler, name string) string {
	if _, ok := findAction(h, name); ok {
		return name
	}
	return "invalid"
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if pe, ok := core.AsPlatformError(err); ok {
		return string(pe.Kind)
	}
	return "internal"
}

func (g *Gateway) now() time.Time {
	if g != nil && g.Clock != nil {
		return g.Clock()
	}
	return time.Now().UTC()
}
