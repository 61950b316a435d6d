package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName  = "instrumented_http_client"
	metricRequestCounter = "http_client_requests_total"

	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute
)

// Client builds requests against a single upstream.
type Client interface {
	NewRequest(opts ...RequestOption) Request
}

// InstrumentedClient is an http.Client whose transport is traced with
// otelhttp and whose requests are counted per provider.
type InstrumentedClient struct {
	client   *http.Client
	requests metric.Int64Counter
	tracer   trace.Tracer
	opts     clientOptions
}

var _ Client = (*InstrumentedClient)(nil)

func NewInstrumentedClient(opts ...ClientOption) (*InstrumentedClient, error) {
	o := clientOptions{
		providerName:   "default",
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{KeepAlive: 10 * time.Second}).DialContext,
		MaxConnsPerHost:     defaultMaxConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
		TLSHandshakeTimeout: o.requestTimeout,
	}

	client := &http.Client{
		Timeout: o.requestTimeout,
		Transport: otelhttp.NewTransport(transport,
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
		),
	}

	requests, err := otel.Meter(instrumentationName,
		metric.WithInstrumentationAttributes(attribute.String("provider", o.providerName)),
	).Int64Counter(metricRequestCounter, metric.WithDescription("Outgoing HTTP requests by outcome"))
	if err != nil {
		return nil, err
	}

	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}

	return &InstrumentedClient{
		client:   client,
		requests: requests,
		tracer:   tracer,
		opts:     o,
	}, nil
}

func (c *InstrumentedClient) NewRequest(opts ...RequestOption) Request {
	r := &requestBuilder{
		client:  c,
		headers: make(http.Header),
	}
	if c.opts.userAgent != "" {
		r.headers.Set("User-Agent", c.opts.userAgent)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeout returns the end-to-end request timeout.
func (c *InstrumentedClient) Timeout() time.Duration {
	return c.client.Timeout
}
