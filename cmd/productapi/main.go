// Package main serves the reference product API over HTTP with a gRPC health endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/abgdnv/storefront/internal/productapi/app"
	"github.com/abgdnv/storefront/internal/productapi/config"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "productapi"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run seeds the in-memory store and starts the HTTP, gRPC health and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Telemetry.Traces.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			logger.Error("error creating tracer provider", slog.Any("error", err))
			return err
		}
		server.OnShutdown(gCtx, g, cfg.Shutdown, func(shutdownCtx context.Context) error {
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shutdown tracer provider: %w", err)
			}
			return nil
		})
	}

	deps := app.SetupDependencies(cfg, logger)
	logger.Info("Product store seeded", slog.Int("count", cfg.Seed))

	server.ServeHTTP(gCtx, g, "http", app.SetupHttpServer(deps, cfg), cfg.Shutdown, logger)

	if cfg.GRPC.Enabled {
		grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
		server.ServeGRPC(gCtx, g, ":"+cfg.GRPC.Port, grpcServer, cfg.Shutdown, logger)
		// keep the health status current until shutdown
		g.Go(func() error {
			deps.Health.Watch(gCtx, cfg.Probes.Interval)
			return nil
		})
	}

	if cfg.PProf.Enabled {
		server.ServeHTTP(gCtx, g, "pprof", cfg.PProf.Server(), cfg.Shutdown, logger)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}
