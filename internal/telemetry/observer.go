package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Observer is a thin, named handle onto an otel tracer. Grounded on the
// observer.CreateSpan(ctx, name) shape used throughout the pack's
// ephemeris provider: call sites don't reach for the otel API directly,
// they ask an Observer for a span and get back the context to pass
// downstream plus the span to annotate and End.
type Observer struct {
	tracer trace.Tracer
}

// NewObserver returns an Observer backed by the global tracer registered
// under name. Safe to construct before NewTracerProvider runs: it will
// simply produce no-op spans until a real provider is installed.
func NewObserver(name string) *Observer {
	return &Observer{tracer: otel.Tracer(name)}
}

// CreateSpan starts a span named name as a child of any span already in
// ctx, returning the derived context and the new span.
func (o *Observer) CreateSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name)
}
