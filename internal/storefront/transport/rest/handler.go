// Package rest exposes the storefront state and accepts intents over HTTP.
package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/actions"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/client"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// Dispatcher runs intents one at a time.
type Dispatcher interface {
	Dispatch(ctx context.Context, in actions.Intent) error
}

type Handler struct {
	dispatcher Dispatcher
	products   *store.Products
	cart       *store.Cart
	logger     *slog.Logger
}

func NewHandler(d Dispatcher, products *store.Products, cart *store.Cart, logger *slog.Logger) *Handler {
	return &Handler{
		dispatcher: d,
		products:   products,
		cart:       cart,
		logger:     logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the intent API under /api/v1, wrapped in mw, plus /healthz.
func (h *Handler) RegisterRoutes(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw...)
		r.Get("/state", h.State)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.Save)
			r.Post("/refresh", h.RefreshAll)
			r.Post("/{id}/refresh", h.Refresh)
			r.Delete("/{id}", h.Remove)
		})

		r.Route("/form", func(r chi.Router) {
			r.Put("/", h.Edit)
			r.Delete("/", h.ResetForm)
		})

		r.Route("/cart/{id}", func(r chi.Router) {
			r.Post("/", h.AddToCart)
			r.Post("/subtract", h.SubtractFromCart)
			r.Delete("/", h.RemoveFromCart)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// State returns the current snapshot of both stores.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, h.snapshot())
}

// RefreshAll reloads the product collection from the API.
func (h *Handler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, actions.FetchProducts{})
}

// Refresh reloads a single product from the API.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.dispatch(w, r, actions.FetchProduct{ID: catalog.ID(id)})
}

// Save submits the body, or the current form when the body is empty.
// A draft rejected by the API answers 422 with the form errors in the state.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var intent actions.SaveProduct
	if err := web.DecodeJSON(r, maxBodyBytes, &intent.Product); err != nil {
		if !errors.Is(err, io.EOF) {
			h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
			web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		intent.FromForm = true
	}

	err := h.dispatcher.Dispatch(r.Context(), intent)
	var rejected *actions.RejectedError
	switch {
	case errors.As(err, &rejected):
		h.logger.InfoContext(r.Context(), "Product rejected by the API", "errors", len(rejected.Details))
		web.RespondJSON(w, h.logger, http.StatusUnprocessableEntity, h.snapshot())
	case err != nil:
		h.respondFailure(w, r, err)
	default:
		web.RespondJSON(w, h.logger, http.StatusOK, h.snapshot())
	}
}

// Remove deletes a product through the API.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.dispatch(w, r, actions.DeleteProduct{ID: catalog.ID(id)})
}

// Edit loads the body into the form buffer.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := web.DecodeJSON(r, maxBodyBytes, &p); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.dispatch(w, r, actions.EditProduct{Product: p})
}

// ResetForm abandons the current edit.
func (h *Handler) ResetForm(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, actions.ResetForm{})
}

// AddToCart adds one unit of a listed product.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	p, found := h.products.Find(catalog.ID(id))
	if !found {
		h.logger.WarnContext(r.Context(), "Product is not listed", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, "Product not found")
		return
	}
	h.dispatch(w, r, actions.AddToCart{Product: p})
}

func (h *Handler) SubtractFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.dispatch(w, r, actions.SubtractFromCart{ProductID: catalog.ID(id)})
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.dispatch(w, r, actions.RemoveFromCart{ProductID: catalog.ID(id)})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, in actions.Intent) {
	if err := h.dispatcher.Dispatch(r.Context(), in); err != nil {
		h.respondFailure(w, r, err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, h.snapshot())
}

// respondFailure maps client and dispatcher errors to HTTP statuses.
func (h *Handler) respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound *client.NotFoundError
		network  *client.NetworkError
		status   *client.StatusError
	)
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		code = http.StatusNotFound
	case errors.As(err, &network) && network.BreakerOpen():
		code = http.StatusServiceUnavailable
	case errors.As(err, &network), errors.As(err, &status):
		code = http.StatusBadGateway
	case errors.Is(err, actions.ErrDispatcherClosed):
		code = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = http.StatusGatewayTimeout
	}
	if code >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Intent failed", "status", code, "error", err)
	} else {
		h.logger.WarnContext(r.Context(), "Intent failed", "status", code, "error", err)
	}
	web.RespondError(w, h.logger, code, err.Error())
}
