package apiclient

import (
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/metrics"
	"github.com/socialgate/socialgate/internal/observability"
)

// BreakerSettings configures a per-platform circuit breaker.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// NewBreaker trips after FailureThreshold consecutive transport failures or
// 5xx/429 responses. Caller mistakes (other 4xx) do not count against it.
func NewBreaker(platform core.Platform, settings BreakerSettings) *gobreaker.CircuitBreaker[[]byte] {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        string(platform),
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerOpen(name, to == gobreaker.StateOpen)
			if logger := observability.Logger(); logger != nil {
				logger.Warn("Upstream circuit breaker changed state",
					zap.String("platform", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			}
		},
	})
}

func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode < http.StatusInternalServerError && te.StatusCode != http.StatusTooManyRequests
	}
	return false
}
