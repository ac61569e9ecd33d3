package persistence

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/EcommerceGo/clientstate/pkg/errors"
)

type tracedProvider struct {
	next   Provider
	tracer trace.Tracer
}

// WithTracing wraps next so every load and save runs inside a span.
func WithTracing(next Provider, tracer trace.Tracer) Provider {
	return &tracedProvider{next: next, tracer: tracer}
}

func (t *tracedProvider) Load(ctx context.Context, key string) ([]byte, error) {
	ctx, span := t.tracer.Start(ctx, "persistence.Load",
		trace.WithAttributes(attribute.String("state.key", key)))
	defer span.End()

	blob, err := t.next.Load(ctx, key)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.Int("state.bytes", len(blob)))
	return blob, err
}

func (t *tracedProvider) Save(ctx context.Context, key string, blob []byte) error {
	ctx, span := t.tracer.Start(ctx, "persistence.Save",
		trace.WithAttributes(
			attribute.String("state.key", key),
			attribute.Int("state.bytes", len(blob)),
		))
	defer span.End()

	err := t.next.Save(ctx, key, blob)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
