// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"errors"

	"github.com/abgdnv/storefront/internal/catalog"
)

// ErrProductNotFound is returned for ids the store does not hold.
var ErrProductNotFound = errors.New("product not found")

// ProductStore is an interface for product storage operations.
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id catalog.ID) (*catalog.Product, error)

	// FindAll returns all products in insertion order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]catalog.Product, error)

	// Create adds a new product under a fresh id.
	Create(ctx context.Context, draft catalog.Draft) (*catalog.Product, error)

	// Update replaces an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id catalog.ID, draft catalog.Draft) (*catalog.Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id catalog.ID) error
}
