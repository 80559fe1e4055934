package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	productapp "github.com/abgdnv/storefront/internal/productapi/app"
	productconfig "github.com/abgdnv/storefront/internal/productapi/config"
	"github.com/abgdnv/storefront/internal/storefront/config"
	pkgconfig "github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StorefrontAppSuite struct {
	suite.Suite
	upstream *httptest.Server
	deps     *Dependencies
	handler  http.Handler
	stop     func()
}

func TestStorefrontApp(t *testing.T) {
	suite.Run(t, new(StorefrontAppSuite))
}

func (s *StorefrontAppSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	upstreamCfg := &productconfig.Config{Seed: 3, API: pkgconfig.APIConfig{Envelope: pkgconfig.EnvelopeData}}
	s.upstream = httptest.NewServer(productapp.SetupHttpHandler(productapp.SetupDependencies(upstreamCfg, logger)))

	cfg := &config.Config{
		API: pkgconfig.APIConfig{URL: s.upstream.URL, Envelope: pkgconfig.EnvelopeData, Timeout: time.Second},
		Resilience: pkgconfig.ResilienceConfig{
			Retry: pkgconfig.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond},
			CircuitBreaker: pkgconfig.CircuitBreakerConfig{
				ConsecutiveFailures: 5,
				ErrorRatePercent:    50,
				OpenTimeout:         time.Second,
				HalfOpenRequests:    1,
			},
		},
		RateLimit:  pkgconfig.RateLimitConfig{Requests: 5, Window: time.Minute},
		Dispatcher: config.DispatcherConfig{QueueSize: 4},
	}
	metrics, err := telemetry.NewMeterProvider("storefront-test")
	s.Require().NoError(err)

	s.deps, err = SetupDependencies(cfg, metrics, logger)
	s.Require().NoError(err)
	s.handler = SetupHttpHandler(s.deps, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.deps.Dispatcher.Run(ctx) }()
	s.stop = cancel
}

func (s *StorefrontAppSuite) TearDownTest() {
	s.stop()
	s.upstream.Close()
}

func (s *StorefrontAppSuite) serve(method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.10:4321"
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *StorefrontAppSuite) TestRefreshLoadsSeededProducts() {
	// when
	rec := s.serve(http.MethodPost, "/api/v1/products/refresh")

	// then
	s.Equal(http.StatusOK, rec.Code)
	s.Len(s.deps.Products.Products(), 3)
}

func (s *StorefrontAppSuite) TestMetricsExposeActionCounter() {
	// given
	s.Require().Equal(http.StatusOK, s.serve(http.MethodPost, "/api/v1/products/refresh").Code)

	// when
	rec := s.serve(http.MethodGet, "/metrics")

	// then
	s.Equal(http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	s.Require().NoError(err)
	s.Contains(string(body), `storefront_actions_total{action="fetch_all"`)
	s.Contains(string(body), `outcome="ok"`)
}

func (s *StorefrontAppSuite) TestIntentAPIIsRateLimited() {
	// given
	for range 5 {
		s.Require().Equal(http.StatusOK, s.serve(http.MethodGet, "/api/v1/state").Code)
	}

	// when
	limited := s.serve(http.MethodGet, "/api/v1/state")
	health := s.serve(http.MethodGet, "/healthz")

	// then
	s.Equal(http.StatusTooManyRequests, limited.Code)
	s.Equal(http.StatusOK, health.Code)
}

func TestSetupDependencies_RejectsBadURL(t *testing.T) {
	// given
	metrics, err := telemetry.NewMeterProvider("storefront-test")
	require.NoError(t, err)
	cfg := &config.Config{API: pkgconfig.APIConfig{URL: "://nope", Envelope: pkgconfig.EnvelopeData, Timeout: time.Second}}

	// when
	deps, err := SetupDependencies(cfg, metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// then
	assert.Nil(t, deps)
	assert.ErrorContains(t, err, "failed to create product API client")
}
