// Package main runs the storefront: product and cart state kept in sync with the product API.
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

	"github.com/abgdnv/storefront/internal/actions"
	"github.com/abgdnv/storefront/internal/storefront/app"
	"github.com/abgdnv/storefront/internal/storefront/config"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run wires the stores and actions, loads the initial catalog and serves the intent API until ctx ends.
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

	metrics, err := telemetry.NewMeterProvider(serviceName)
	if err != nil {
		return fmt.Errorf("failed to create meter provider: %w", err)
	}
	server.OnShutdown(gCtx, g, cfg.Shutdown, func(shutdownCtx context.Context) error {
		if err := metrics.Provider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown meter provider: %w", err)
		}
		return nil
	})

	deps, err := app.SetupDependencies(cfg, metrics, logger)
	if err != nil {
		return err
	}

	// The dispatcher finishes queued intents after gCtx ends.
	g.Go(func() error {
		return deps.Dispatcher.Run(gCtx)
	})

	// The API may come up later, so a failed initial load is not fatal.
	g.Go(func() error {
		if err := deps.Dispatcher.Dispatch(gCtx, actions.FetchProducts{}); err != nil {
			logger.Warn("Initial product load failed", slog.Any("error", err))
			return nil
		}
		logger.Info("Initial product load complete", slog.Int("count", len(deps.Products.Products())))
		return nil
	})

	server.ServeHTTP(gCtx, g, "http", app.SetupHttpServer(deps, cfg), cfg.Shutdown, logger)
	if cfg.PProf.Enabled {
		server.ServeHTTP(gCtx, g, "pprof", cfg.PProf.Server(), cfg.Shutdown, logger)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}
