package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/abgdnv/storefront/pkg/config"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// ServeHTTP runs srv in g and shuts it down gracefully once ctx is done.
func ServeHTTP(ctx context.Context, g *errgroup.Group, name string, srv *http.Server, shutdown config.ShutdownConfig, logger *slog.Logger) {
	g.Go(func() error {
		logger.Info("Server listening", slog.String("server", name), slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	OnShutdown(ctx, g, shutdown, func(shutdownCtx context.Context) error {
		logger.Info("Shutting down server", slog.String("server", name))
		return srv.Shutdown(shutdownCtx)
	})
}

// ServeGRPC listens on addr and stops srv once ctx is done, forcing a stop
// when the graceful stop outlives the shutdown timeout.
func ServeGRPC(ctx context.Context, g *errgroup.Group, addr string, srv *grpc.Server, shutdown config.ShutdownConfig, logger *slog.Logger) {
	g.Go(func() error {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", lis.Addr().String()))
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server failed: %w", err)
		}
		return nil
	})
	OnShutdown(ctx, g, shutdown, func(shutdownCtx context.Context) error {
		logger.Info("Shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			logger.Info("gRPC server stopped gracefully.")
			return nil
		case <-shutdownCtx.Done():
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			srv.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})
}

// OnShutdown runs fn in g after ctx is done, bounded by the shutdown timeout.
func OnShutdown(ctx context.Context, g *errgroup.Group, shutdown config.ShutdownConfig, fn func(context.Context) error) {
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := shutdown.Context()
		defer cancel()
		return fn(shutdownCtx)
	})
}
