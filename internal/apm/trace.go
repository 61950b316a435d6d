package apm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans on the globally registered provider. The provider is
// looked up lazily so tracers created before NewTraceProvider still export.
type Tracer interface {
	StartSpanFromContext(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span)
	SpanFromContext(ctx context.Context) Span
}

// Span is the subset of trace.Span the services record into.
type Span interface {
	SetAttribute(kv attribute.KeyValue)
	SetAttributes(kvs ...attribute.KeyValue)
	AddEvent(name string, options ...trace.EventOption)
	SetStatus(code codes.Code, description string)
	NoticeError(err error)
	End(options ...trace.SpanEndOption)
}

type openTracer struct {
	name string
}

func NewTracer(name string) Tracer {
	return &openTracer{name: name}
}

func (t *openTracer) StartSpanFromContext(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span) {
	ctx, span := otel.Tracer(t.name).Start(ctx, name, opts...)
	return ctx, traceSpan{span}
}

func (t *openTracer) SpanFromContext(ctx context.Context) Span {
	return traceSpan{trace.SpanFromContext(ctx)}
}

// TraceID returns the hex trace ID active in ctx, or "" outside a span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

type traceSpan struct {
	trace.Span
}

func (s traceSpan) SetAttribute(kv attribute.KeyValue) {
	s.Span.SetAttributes(kv)
}

// NoticeError records err and marks the span failed.
func (s traceSpan) NoticeError(err error) {
	s.Span.RecordError(err)
	s.Span.SetStatus(codes.Error, err.Error())
}
