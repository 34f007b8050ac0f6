package mocks

import (
	"context"
	"todolist/infras/otel"
)

type otelImpl struct {
}

// NewScope implements otel.Otel.
func (o *otelImpl) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

// Shutdown implements otel.Otel.
func (o *otelImpl) Shutdown(_ context.Context) error {
	return nil
}

func NewOtel() otel.Otel {
	return &otelImpl{}
}
