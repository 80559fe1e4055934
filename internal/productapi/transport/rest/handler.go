// Package rest provides HTTP handlers for the product collection.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/productapi/store"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	invalidBody     = "Invalid request body"
	productNotFound = "Product not found"
	internalError   = "Internal server error"
	maxBodyBytes    = 1 << 20
)

type Handler struct {
	store    store.ProductStore
	validate *validator.Validate
	envelope string
	logger   *slog.Logger
}

// NewHandler creates a new Handler serving products from s, wrapping payloads per envelope.
func NewHandler(s store.ProductStore, envelope string, logger *slog.Logger) *Handler {
	return &Handler{
		store:    s,
		validate: newValidator(),
		envelope: envelope,
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindAll retrieves a list of all products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received request to find all products")
	list, err := h.store.FindAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		h.respondErrors(w, http.StatusInternalServerError, catalog.ErrorDetail{Error: internalError, Status: http.StatusInternalServerError})
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	h.respondData(w, http.StatusOK, list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(r.PathValue("id"))
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		h.storeFailure(w, r, id, err)
		return
	}
	h.respondData(w, http.StatusOK, found)
}

// Create validates the body and stores a new product under a fresh GUID.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if err := web.DecodeJSON(r, maxBodyBytes, &body); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		h.respondErrors(w, http.StatusBadRequest, catalog.ErrorDetail{Title: invalidBody, Status: http.StatusBadRequest})
		return
	}
	req, typeErrs := body.request()
	if details := validateProduct(h.validate, req, typeErrs); len(details) > 0 {
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", len(details))
		h.respondErrors(w, http.StatusBadRequest, details...)
		return
	}

	created, err := h.store.Create(r.Context(), req.draft())
	if err != nil {
		h.storeFailure(w, r, "", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	h.respondData(w, http.StatusCreated, created)
}

// Update validates the path id and the body, then replaces the product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var raw productBody
	if err := web.DecodeJSON(r, maxBodyBytes, &raw); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		h.respondErrors(w, http.StatusBadRequest, catalog.ErrorDetail{Title: invalidBody, Status: http.StatusBadRequest})
		return
	}
	body, typeErrs := raw.request()
	req := updateRequest{ID: id, productRequest: body}
	if details := validateProduct(h.validate, req, typeErrs); len(details) > 0 {
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "ID", id, "errors", len(details))
		h.respondErrors(w, http.StatusBadRequest, details...)
		return
	}

	updated, err := h.store.Update(r.Context(), catalog.ID(id), body.draft())
	if err != nil {
		h.storeFailure(w, r, catalog.ID(id), err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	h.respondData(w, http.StatusCreated, updated)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id := catalog.ID(r.PathValue("id"))
	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		h.storeFailure(w, r, id, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) storeFailure(w http.ResponseWriter, r *http.Request, id catalog.ID, err error) {
	if errors.Is(err, store.ErrProductNotFound) {
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		h.respondErrors(w, http.StatusNotFound, catalog.ErrorDetail{Error: productNotFound, Status: http.StatusNotFound})
		return
	}
	h.logger.ErrorContext(r.Context(), "Store operation failed", "ID", id, "error", err)
	h.respondErrors(w, http.StatusInternalServerError, catalog.ErrorDetail{Error: internalError, Status: http.StatusInternalServerError})
}

func (h *Handler) respondData(w http.ResponseWriter, status int, payload any) {
	if h.envelope == config.EnvelopeBare {
		web.RespondJSON(w, h.logger, status, payload)
		return
	}
	web.RespondJSON(w, h.logger, status, map[string]any{"data": payload})
}

func (h *Handler) respondErrors(w http.ResponseWriter, status int, details ...catalog.ErrorDetail) {
	web.RespondJSON(w, h.logger, status, catalog.ErrorEnvelope{Errors: details})
}
