// Package logging wraps slog with trace/span correlation, adapted from the
// teacher's correlated logger (engine/telemetry/logging/logging.go). Where
// the teacher extracted IDs from its own internal tracer, buswatch pulls
// them from the real go.opentelemetry.io/otel/trace span context already
// threaded through adapter and scheduler contexts, so a log line emitted
// during a Collect() or adapter poll carries the same trace/span IDs an
// OTLP exporter would tag the corresponding span with.
package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Logger is a minimal correlation-aware wrapper over *slog.Logger.
type Logger interface {
	InfoCtx(ctx context.Context, msg string, attrs ...any)
	WarnCtx(ctx context.Context, msg string, attrs ...any)
	ErrorCtx(ctx context.Context, msg string, attrs ...any)
}

type correlatedLogger struct{ base *slog.Logger }

// New returns a correlated Logger wrapping base, or slog.Default() if base
// is nil.
func New(base *slog.Logger) Logger {
	if base == nil {
		base = slog.Default()
	}
	return &correlatedLogger{base: base}
}

func (l *correlatedLogger) InfoCtx(ctx context.Context, msg string, attrs ...any) {
	l.base.InfoContext(ctx, msg, withSpan(ctx, attrs)...)
}

func (l *correlatedLogger) WarnCtx(ctx context.Context, msg string, attrs ...any) {
	l.base.WarnContext(ctx, msg, withSpan(ctx, attrs)...)
}

func (l *correlatedLogger) ErrorCtx(ctx context.Context, msg string, attrs ...any) {
	l.base.ErrorContext(ctx, msg, withSpan(ctx, attrs)...)
}

func withSpan(ctx context.Context, attrs []any) []any {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return attrs
	}
	return append(attrs, slog.String("trace_id", sc.TraceID().String()), slog.String("span_id", sc.SpanID().String()))
}
