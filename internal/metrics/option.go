package metrics

type collector struct {
	endpoint string
	headers  map[string]string
	insecure bool
}

type config struct {
	serviceName string
	prometheus  bool
	collectors  []collector
}

// Option configures NewMetricProvider.
type Option func(*config)

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(c *config) {
		c.serviceName = name
	}
}

// WithPrometheus adds a pull reader served by Provider.Handler.
func WithPrometheus() Option {
	return func(c *config) {
		c.prometheus = true
	}
}

// WithOTLPCollector adds a periodic push reader targeting an OTLP/gRPC
// collector.
func WithOTLPCollector(endpoint string, headers map[string]string, insecure bool) Option {
	return func(c *config) {
		c.collectors = append(c.collectors, collector{
			endpoint: endpoint,
			headers:  headers,
			insecure: insecure,
		})
	}
}
