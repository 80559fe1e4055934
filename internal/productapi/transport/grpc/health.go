// Package grpc exposes the product API's health over the standard gRPC health protocol.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront/internal/productapi/store"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "storefront.productapi.Products"

// Health reports SERVING while the product store answers reads.
type Health struct {
	server *health.Server
	store  store.ProductStore
	logger *slog.Logger
}

func NewHealth(s store.ProductStore, logger *slog.Logger) *Health {
	return &Health{
		server: health.NewServer(),
		store:  s,
		logger: logger.With("component", "grpc-health"),
	}
}

// Server returns the health server to register with grpc.
func (h *Health) Server() *health.Server {
	return h.server
}

// Probe reads the store once and publishes the resulting status.
func (h *Health) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if _, err := h.store.FindAll(ctx); err != nil {
		h.logger.WarnContext(ctx, "Product store probe failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Watch probes every interval until ctx is done, then marks everything NOT_SERVING.
func (h *Health) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}
