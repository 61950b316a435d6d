package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fd1az/tokenprice/business/pricing"
	"github.com/fd1az/tokenprice/internal/apm"
	"github.com/fd1az/tokenprice/internal/config"
	"github.com/fd1az/tokenprice/internal/logger"
	"github.com/fd1az/tokenprice/internal/metrics"
	"github.com/fd1az/tokenprice/internal/monolith"
)

// container is the part of the monolith the commands use.
type container interface {
	monolith.Monolith
	StartModules(ctx context.Context, modules ...monolith.Module) error
	CheckRPC(ctx context.Context) (bool, string)
	Close() error
}

// runtime holds everything a command needs after startup.
type runtime struct {
	cfg     *config.Config
	log     *logger.Logger
	mono    container
	pricing *pricing.Module
	metrics *metrics.Provider
	tracer  apm.TraceProvider
}

type bootstrapOptions struct {
	logOutput io.Writer
	// prometheus forces a Prometheus reader even with telemetry disabled.
	prometheus bool
}

func bootstrap(ctx context.Context, flags *rootFlags, opts bootstrapOptions) (*runtime, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.App.LogLevel = flags.logLevel
	}

	log := logger.New(opts.logOutput, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	rt := &runtime{cfg: cfg, log: log}

	if err := rt.startTelemetry(ctx, opts.prometheus); err != nil {
		rt.Close(ctx)
		return nil, err
	}

	mono, err := monolith.New(ctx, cfg, log)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to create monolith: %w", err)
	}
	rt.mono = mono

	rt.pricing = &pricing.Module{}
	if err := mono.StartModules(ctx, rt.pricing); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to start modules: %w", err)
	}

	return rt, nil
}

func (rt *runtime) startTelemetry(ctx context.Context, prometheus bool) error {
	tcfg := rt.cfg.Telemetry

	var readers []metrics.Option
	if prometheus {
		readers = append(readers, metrics.WithPrometheus())
	}

	if tcfg.Enabled {
		provider, ok := apm.ParseProvider(tcfg.TraceProvider)
		if !ok {
			rt.log.Warn(ctx, "unknown trace provider", "provider", tcfg.TraceProvider)
		}

		tp, err := apm.NewTraceProvider(tcfg.ServiceName, rt.log, apm.WithProvider(provider, apm.ExporterConfig{
			Endpoint: tcfg.OTLPEndpoint,
			Headers:  tcfg.OTLPHeaders,
		}, rt.log))
		if err != nil {
			return fmt.Errorf("failed to start tracing: %w", err)
		}
		rt.tracer = tp

		if provider == apm.OTLPGRPCProvider && tcfg.OTLPEndpoint != "" {
			headers, err := apm.ParseHeaders(tcfg.OTLPHeaders)
			if err != nil {
				return fmt.Errorf("failed to start metrics: %w", err)
			}
			readers = append(readers, metrics.WithOTLPCollector(tcfg.OTLPEndpoint, headers, false))
		}
	}

	if len(readers) == 0 {
		return nil
	}

	mp, err := metrics.NewMetricProvider(ctx, append(readers, metrics.WithServiceName(tcfg.ServiceName))...)
	if err != nil {
		return fmt.Errorf("failed to start metrics: %w", err)
	}
	rt.metrics = mp

	return nil
}

// Close releases the RPC client and flushes telemetry.
func (rt *runtime) Close(ctx context.Context) {
	if rt.mono != nil {
		_ = rt.mono.Close()
	}
	if rt.metrics != nil {
		if err := rt.metrics.Shutdown(context.WithoutCancel(ctx)); err != nil {
			rt.log.Warn(ctx, "metrics shutdown", "error", err)
		}
	}
	if rt.tracer != nil {
		if err := rt.tracer.Stop(); err != nil {
			rt.log.Warn(ctx, "tracer shutdown", "error", err)
		}
	}
	_ = rt.log.Sync()
}
