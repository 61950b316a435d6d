// Package httpclient provides an instrumented JSON-over-HTTP client with OTEL tracing and metrics.
package httpclient

import (
	"time"

	"go.opentelemetry.io/otel/trace"
)

type clientOptions struct {
	baseURL        string
	providerName   string
	userAgent      string
	requestTimeout time.Duration
	tracer         trace.Tracer
	traceBodies    bool
}

// ClientOption configures an InstrumentedClient.
type ClientOption func(*clientOptions)

// WithBaseURL sets the root relative request paths are joined to.
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithProviderName labels spans and the request counter.
func WithProviderName(name string) ClientOption {
	return func(o *clientOptions) {
		o.providerName = name
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) ClientOption {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// WithRequestTimeout bounds every request end to end.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.requestTimeout = timeout
	}
}

// WithTracer records request spans on tracer. When traceBodies is set the
// response body is attached as a span event.
func WithTracer(tracer trace.Tracer, traceBodies bool) ClientOption {
	return func(o *clientOptions) {
		o.tracer = tracer
		o.traceBodies = traceBodies
	}
}

// ResponseErrorHandler decides whether a response is a failure. It runs
// before the body is decoded.
type ResponseErrorHandler func(statusCode int, body []byte) error

// RequestOption configures a single request.
type RequestOption func(*requestBuilder)

// WithResponseErrorHandler replaces the default non-2xx check.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(r *requestBuilder) {
		r.errorHandler = handler
	}
}
