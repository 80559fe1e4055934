// Package app contains the application setup for the storefront.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/actions"
	"github.com/abgdnv/storefront/internal/client"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/storefront/config"
	"github.com/abgdnv/storefront/internal/storefront/transport/rest"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const meterName = "storefront"

// Dependencies is the single state container of the storefront process.
type Dependencies struct {
	Client     *client.Client
	Products   *store.Products
	Cart       *store.Cart
	Actions    *actions.Actions
	Dispatcher *actions.Dispatcher
	Metrics    *telemetry.Metrics
	Logger     *slog.Logger
}

// SetupDependencies builds the client, both stores, the actions and their dispatcher.
func SetupDependencies(cfg *config.Config, metrics *telemetry.Metrics, logger *slog.Logger) (*Dependencies, error) {
	apiClient, err := client.New(cfg.API, cfg.Resilience, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create product API client: %w", err)
	}

	products := store.NewProducts()
	cart := store.NewCart()
	acts := actions.New(apiClient, products, cart, logger,
		actions.WithMeter(metrics.Provider.Meter(meterName)),
		actions.WithIDGenerator(actions.UUIDGenerator),
	)

	return &Dependencies{
		Client:     apiClient,
		Products:   products,
		Cart:       cart,
		Actions:    acts,
		Dispatcher: actions.NewDispatcher(acts, cfg.Dispatcher.QueueSize, logger),
		Metrics:    metrics,
		Logger:     logger,
	}, nil
}

// SetupHttpHandler initializes the routes for the storefront intent API.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps, cfg)
	return otelhttp.NewHandler(mux, "storefront")
}

func wireRoutes(mux *chi.Mux, deps *Dependencies, cfg *config.Config) {
	intentHandler := rest.NewHandler(deps.Dispatcher, deps.Products, deps.Cart, deps.Logger)
	intentHandler.RegisterRoutes(mux, server.RateLimit(cfg.RateLimit))
	mux.Handle("/metrics", deps.Metrics.Handler)
}

// SetupHttpServer creates and configures an HTTP server for the storefront.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps, cfg))
}
