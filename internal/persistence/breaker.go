package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	apperrors "github.com/utafrali/EcommerceGo/clientstate/pkg/errors"
)

// BreakerConfig holds configuration for the persistence circuit breaker.
type BreakerConfig struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval clears the failure counts while closed. 0 never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once MinRequests calls have been seen.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig returns sensible defaults for a state backend breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      15 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// BreakerProvider fails fast while the wrapped backend keeps erroring, so a
// dead store backend costs callers nothing but a logged warning.
type BreakerProvider struct {
	next    Provider
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// WithBreaker wraps next with a circuit breaker. Misses (ErrNotFound) count as successes.
func WithBreaker(next Provider, cfg BreakerConfig, logger *slog.Logger) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, apperrors.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("persistence breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakerProvider{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// Load reads through the breaker.
func (b *BreakerProvider) Load(ctx context.Context, key string) ([]byte, error) {
	blob, err := b.breaker.Execute(func() ([]byte, error) {
		return b.next.Load(ctx, key)
	})
	return blob, mapBreakerErr(err)
}

// Save writes through the breaker.
func (b *BreakerProvider) Save(ctx context.Context, key string, blob []byte) error {
	_, err := b.breaker.Execute(func() ([]byte, error) {
		return nil, b.next.Save(ctx, key, blob)
	})
	return mapBreakerErr(err)
}

// State returns the current breaker state.
func (b *BreakerProvider) State() gobreaker.State {
	return b.breaker.State()
}

func mapBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.Unavailable("state backend unavailable", err)
	}
	return err
}
