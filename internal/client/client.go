// Package client talks to the products REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultUserAgent = "storefront/1.0"
	maxBodyBytes     = 1 << 20
	maxErrorBody     = 512
)

// Client issues calls against the product collection and item endpoints.
// It never mutates local state.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	envelope  string
	userAgent string
	retry     config.RetryConfig
	breaker   *gobreaker.CircuitBreaker[*response]
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New builds a Client for the API described by cfg.
func New(cfg config.APIConfig, res config.ResilienceConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.URL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", cfg.URL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", cfg.URL)
	}
	envelope := cfg.Envelope
	if envelope == "" {
		envelope = config.EnvelopeData
	}
	logger = logger.With("component", "client")
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		envelope:  envelope,
		userAgent: defaultUserAgent,
		retry:     res.Retry,
		breaker:   newBreaker(res.CircuitBreaker, logger),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches the whole product collection.
func (c *Client) List(ctx context.Context) ([]catalog.Product, error) {
	const op = "list products"
	resp, err := c.read(ctx, op, c.productsURL())
	if err != nil {
		return nil, err
	}
	if err := c.expect(resp, "", http.StatusOK); err != nil {
		return nil, err
	}
	products, err := decode[[]catalog.Product](c.envelope, resp.body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if products == nil {
		products = []catalog.Product{}
	}
	return products, nil
}

// Get fetches a single product.
func (c *Client) Get(ctx context.Context, id catalog.ID) (catalog.Product, error) {
	const op = "get product"
	resp, err := c.read(ctx, op, c.productsURL(id))
	if err != nil {
		return catalog.Product{}, err
	}
	if err := c.expect(resp, id, http.StatusOK); err != nil {
		return catalog.Product{}, err
	}
	p, err := decode[catalog.Product](c.envelope, resp.body)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Create posts a draft. The server assigns the id.
func (c *Client) Create(ctx context.Context, draft catalog.Draft) (catalog.Product, error) {
	const op = "create product"
	resp, err := c.write(ctx, op, http.MethodPost, c.productsURL(), draft)
	if err != nil {
		return catalog.Product{}, err
	}
	if err := c.expect(resp, "", http.StatusCreated, http.StatusOK); err != nil {
		return catalog.Product{}, err
	}
	p, err := decode[catalog.Product](c.envelope, resp.body)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Update replaces the product stored under id.
func (c *Client) Update(ctx context.Context, id catalog.ID, draft catalog.Draft) (catalog.Product, error) {
	const op = "update product"
	resp, err := c.write(ctx, op, http.MethodPut, c.productsURL(id), draft)
	if err != nil {
		return catalog.Product{}, err
	}
	if err := c.expect(resp, id, http.StatusCreated, http.StatusOK); err != nil {
		return catalog.Product{}, err
	}
	p, err := decode[catalog.Product](c.envelope, resp.body)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Remove deletes the product stored under id.
func (c *Client) Remove(ctx context.Context, id catalog.ID) error {
	const op = "remove product"
	resp, err := c.write(ctx, op, http.MethodDelete, c.productsURL(id), nil)
	if err != nil {
		return err
	}
	return c.expect(resp, id, http.StatusNoContent, http.StatusOK)
}

func (c *Client) productsURL(id ...catalog.ID) *url.URL {
	if len(id) == 0 {
		return c.baseURL.JoinPath("products")
	}
	return c.baseURL.JoinPath("products", id[0].String())
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

// read performs an idempotent GET with retries.
func (c *Client) read(ctx context.Context, op string, u *url.URL) (*response, error) {
	return c.withRetry(ctx, op, func() (*response, error) {
		return c.execute(ctx, op, http.MethodGet, u, nil)
	})
}

// write performs a single non-idempotent call.
func (c *Client) write(ctx context.Context, op, method string, u *url.URL, body any) (*response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
	}
	return c.execute(ctx, op, method, u, payload)
}

// execute runs one attempt through the circuit breaker. Server errors come back
// as *StatusError next to the response so the breaker can count them.
func (c *Client) execute(ctx context.Context, op, method string, u *url.URL, payload []byte) (*response, error) {
	resp, err := c.breaker.Execute(func() (*response, error) {
		return c.roundTrip(ctx, op, method, u, payload)
	})
	if err == nil {
		return resp, nil
	}
	var se *StatusError
	if errors.As(err, &se) && resp != nil {
		return resp, nil
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return nil, err
	}
	return nil, &NetworkError{Op: op, Err: err}
}

func (c *Client) roundTrip(ctx context.Context, op, method string, u *url.URL, payload []byte) (*response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqID, ok := web.GetRequestID(ctx); ok {
		req.Header.Set(middleware.RequestIDHeader, reqID)
	}

	c.logger.DebugContext(ctx, "Sending request", "op", op, "method", method, "url", u.String())
	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	resp := &response{status: httpResp.StatusCode, body: data}
	if resp.status >= http.StatusInternalServerError {
		return resp, statusError(resp)
	}
	return resp, nil
}

// expect maps any status outside want to the error taxonomy.
func (c *Client) expect(resp *response, id catalog.ID, want ...int) error {
	for _, status := range want {
		if resp.status == status {
			return nil
		}
	}
	if resp.status >= 200 && resp.status < 300 {
		return nil
	}
	details := errorDetails(resp.body)
	switch {
	case resp.status == http.StatusNotFound:
		return &NotFoundError{ID: id, Details: details}
	case resp.status >= 400 && resp.status < 500 && len(details) > 0:
		return &ValidationError{Status: resp.status, Details: details}
	default:
		return statusError(resp)
	}
}

func statusError(resp *response) *StatusError {
	body := strings.TrimSpace(string(resp.body))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &StatusError{Status: resp.status, Body: body}
}

func errorDetails(body []byte) []catalog.ErrorDetail {
	var env catalog.ErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	return env.Errors
}

func decode[T any](envelope string, body []byte) (T, error) {
	var zero T
	if envelope == config.EnvelopeBare {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return zero, fmt.Errorf("decode response: %w", err)
		}
		return v, nil
	}
	var env struct {
		Data *T `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}
	if env.Data == nil {
		return zero, errors.New("decode response: missing data field")
	}
	return *env.Data, nil
}
