// Package app contains the application setup for the product API.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/productapi/config"
	"github.com/abgdnv/storefront/internal/productapi/store"
	grpcImpl "github.com/abgdnv/storefront/internal/productapi/transport/grpc"
	"github.com/abgdnv/storefront/internal/productapi/transport/rest"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
)

type Dependencies struct {
	Store    store.ProductStore
	Health   *grpcImpl.Health
	Envelope string
	Logger   *slog.Logger
}

// SetupDependencies builds a store seeded with cfg.Seed demo products.
func SetupDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	productStore := store.NewSeededStore(cfg.Seed)
	return &Dependencies{
		Store:    productStore,
		Health:   grpcImpl.NewHealth(productStore, logger),
		Envelope: cfg.API.Envelope,
		Logger:   logger,
	}
}

// SetupHttpHandler initializes the routes for the product API.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, "productapi")
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.Store, deps.Envelope, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the product API.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer creates the gRPC server carrying only the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, server.HealthRegistration(deps.Health.Server()))
}
