// Package tracing wraps OpenTelemetry span handling.
package tracing

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Ramsey-B/fern"

var tracer atomic.Pointer[trace.Tracer]

// SetTracer replaces the tracer used by StartSpan. Setup calls it once the
// exporting provider is installed.
func SetTracer(t trace.Tracer) {
	tracer.Store(&t)
}

func current() trace.Tracer {
	if t := tracer.Load(); t != nil {
		return *t
	}
	return otel.Tracer(instrumentationName)
}

// StartSpan starts a child span of whatever span ctx carries.
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return current().Start(ctx, spanName)
}

// RecordError marks the span failed and returns err unchanged.
func RecordError(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// GetTraceID returns the sampled trace id carried by ctx, or "".
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// GetSpanID returns the span id carried by ctx, or "".
func GetSpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}
