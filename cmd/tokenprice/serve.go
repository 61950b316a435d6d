package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/tokenprice/business/pricing/infra/httpapi"
	"github.com/fd1az/tokenprice/internal/health"
	"github.com/fd1az/tokenprice/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the price API with health and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := bootstrap(ctx, root, bootstrapOptions{logOutput: os.Stderr, prometheus: true})
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			if cmd.Flags().Changed("port") {
				rt.cfg.Server.Port = port
			}

			return serve(ctx, rt)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "override server.port")

	return cmd
}

func serve(ctx context.Context, rt *runtime) error {
	mux := http.NewServeMux()

	httpapi.NewHandler(rt.pricing.Service(), rt.log).Register(mux)

	checker := health.NewChecker(version)
	checker.RegisterCheck("rpc", rt.mono.CheckRPC)
	checker.Register(mux)

	// A zero or shared prometheus port mounts /metrics on the API server.
	promPort := rt.cfg.Telemetry.PrometheusPort
	if promPort == 0 || promPort == rt.cfg.Server.Port {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	} else {
		metricsServer := metrics.NewServer(promPort, rt.metrics.Handler(), rt.log)
		metricsServer.Start()
		defer func() {
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			_ = metricsServer.Stop(sctx)
		}()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", rt.cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rt.log.Info(ctx, "price api listening", "addr", server.Addr, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		rt.log.Info(ctx, "shutting down price api")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sctx)
	})

	return g.Wait()
}
