package metrics

import (
	"context"
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

// Provider is the process meter provider. When a Prometheus reader is
// configured its registry is served by Handler.
type Provider struct {
	*sdkmetric.MeterProvider
	registry *prom.Registry
}

var _ MetricProvider = (*Provider)(nil)

func buildReaders(ctx context.Context, cfg config, registry *prom.Registry) ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if cfg.prometheus {
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		readers = append(readers, exporter)
	}

	for _, c := range cfg.collectors {
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpointURL(c.endpoint),
			otlpmetricgrpc.WithHeaders(c.headers),
		}
		if c.insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}

		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter))
	}

	return readers, nil
}

// NewMetricProvider builds a meter provider from the configured readers and
// installs it as the global provider.
func NewMetricProvider(ctx context.Context, opts ...Option) (*Provider, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	registry := prom.NewRegistry()
	readers, err := buildReaders(ctx, cfg, registry)
	if err != nil {
		return nil, err
	}

	providerOpts := []sdkmetric.Option{
		sdkmetric.WithResource(resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.serviceName))),
	}
	for _, r := range readers {
		providerOpts = append(providerOpts, sdkmetric.WithReader(r))
	}

	mp := sdkmetric.NewMeterProvider(providerOpts...)
	otel.SetMeterProvider(mp)

	return &Provider{MeterProvider: mp, registry: registry}, nil
}

// Handler exposes the Prometheus registry in the text exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
