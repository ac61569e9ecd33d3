package persistence

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/utafrali/EcommerceGo/clientstate/pkg/errors"
)

var (
	saveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_state_saves_total",
			Help: "Total number of state blob saves by domain and outcome",
		},
		[]string{"domain", "outcome"},
	)

	loadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_state_loads_total",
			Help: "Total number of state blob loads by domain and outcome",
		},
		[]string{"domain", "outcome"},
	)

	asyncDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_state_async_dropped_total",
			Help: "Total number of queued saves dropped after exhausting retries",
		},
		[]string{"domain"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "client_state_breaker_state",
			Help: "Current state of the persistence circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrNotFound):
		return "miss"
	case errors.Is(err, apperrors.ErrServiceUnavail):
		return "unavailable"
	default:
		return "error"
	}
}

type metricsProvider struct {
	next Provider
}

// WithMetrics counts loads and saves passing through next.
func WithMetrics(next Provider) Provider {
	return &metricsProvider{next: next}
}

func (m *metricsProvider) Load(ctx context.Context, key string) ([]byte, error) {
	blob, err := m.next.Load(ctx, key)
	loadTotal.WithLabelValues(DomainOf(key), outcome(err)).Inc()
	return blob, err
}

func (m *metricsProvider) Save(ctx context.Context, key string, blob []byte) error {
	err := m.next.Save(ctx, key, blob)
	saveTotal.WithLabelValues(DomainOf(key), outcome(err)).Inc()
	return err
}
