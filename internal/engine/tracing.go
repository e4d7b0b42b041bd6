// Tracing instrumentation for conversation runs.
package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// startRunSpan starts a span for one conversation run.
func startRunSpan(ctx context.Context, agent string) (context.Context, trace.Span) {
	tracer := otel.Tracer("forge/engine")
	ctx, span := tracer.Start(ctx, "engine.run")
	span.SetAttributes(
		attribute.String("engine.agent", agent),
	)
	return ctx, span
}

// endRunSpan ends the run span with the final counters.
func endRunSpan(span trace.Span, productiveCalls, rateLimitHits int, err error) {
	span.SetAttributes(
		attribute.Int("engine.productive_calls", productiveCalls),
		attribute.Int("engine.rate_limit_hits", rateLimitHits),
	)
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
