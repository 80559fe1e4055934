// Package actions orchestrates product API calls and commits their results into the stores.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/client"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProductClient is the subset of the product API the actions depend on.
type ProductClient interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id catalog.ID) (catalog.Product, error)
	Create(ctx context.Context, draft catalog.Draft) (catalog.Product, error)
	Update(ctx context.Context, id catalog.ID, draft catalog.Draft) (catalog.Product, error)
	Remove(ctx context.Context, id catalog.ID) error
}

var _ ProductClient = (*client.Client)(nil)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// Actions commits API results into the product and cart stores.
// No store is touched before the call it depends on has settled.
type Actions struct {
	client   ProductClient
	products *store.Products
	cart     *store.Cart
	newID    func() catalog.ID
	logger   *slog.Logger
	counter  metric.Int64Counter
}

// Option customizes Actions.
type Option func(*options)

type options struct {
	newID func() catalog.ID
	meter metric.Meter
}

// WithIDGenerator assigns ids to created products when the API response carries none.
func WithIDGenerator(gen func() catalog.ID) Option {
	return func(o *options) {
		o.newID = gen
	}
}

// WithMeter records action counters on m instead of the global meter.
func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

// UUIDGenerator returns random UUIDv4 ids.
func UUIDGenerator() catalog.ID {
	return catalog.ID(uuid.NewString())
}

// New wires the actions to a client and the two stores.
func New(c ProductClient, products *store.Products, cart *store.Cart, logger *slog.Logger, opts ...Option) *Actions {
	o := options{meter: otel.Meter("storefront")}
	for _, opt := range opts {
		opt(&o)
	}
	counter, err := o.meter.Int64Counter("storefront_actions_total", metric.WithDescription("Total number of synchronization actions by outcome"))
	if err != nil {
		panic(fmt.Sprintf("failed to create storefront_actions_total counter: %v", err))
	}
	return &Actions{
		client:   c,
		products: products,
		cart:     cart,
		newID:    o.newID,
		logger:   logger.With("component", "actions"),
		counter:  counter,
	}
}

// FetchAll replaces the product collection with the API's list.
func (a *Actions) FetchAll(ctx context.Context) error {
	const action = "fetch_all"
	products, err := a.client.List(ctx)
	if err != nil {
		return a.fail(ctx, action, err)
	}
	a.products.SetAll(products)
	a.logger.DebugContext(ctx, "Products loaded", "count", len(products))
	a.record(ctx, action, outcomeOK)
	return nil
}

// Fetch refreshes a single product.
func (a *Actions) Fetch(ctx context.Context, id catalog.ID) error {
	const action = "fetch"
	p, err := a.client.Get(ctx, id)
	if err != nil {
		return a.fail(ctx, action, err)
	}
	a.products.Upsert(p)
	a.record(ctx, action, outcomeOK)
	return nil
}

// Save updates p when its id is already in the store and creates it otherwise.
// A draft the API rejects is recorded in the form errors and Save returns nil.
func (a *Actions) Save(ctx context.Context, p catalog.Product) error {
	return ignoreRejection(a.save(ctx, p))
}

func (a *Actions) save(ctx context.Context, p catalog.Product) error {
	if p.ID != "" && a.products.Has(p.ID) {
		return a.update(ctx, p)
	}
	return a.create(ctx, p)
}

// Create posts p as a new product. A rejected draft leaves the form untouched
// and records the API's errors.
func (a *Actions) Create(ctx context.Context, p catalog.Product) error {
	return ignoreRejection(a.create(ctx, p))
}

func (a *Actions) create(ctx context.Context, p catalog.Product) error {
	const action = "create"
	created, err := a.client.Create(ctx, p.Draft())
	if err != nil {
		return a.rejectOrFail(ctx, action, err)
	}
	if created.ID == "" {
		created.ID = p.ID
		if created.ID == "" && a.newID != nil {
			created.ID = a.newID()
		}
	}
	a.products.CommitSave(created)
	a.logger.InfoContext(ctx, "Product created", "ID", created.ID, "Name", created.Name)
	a.record(ctx, action, outcomeOK)
	return nil
}

// Update replaces the stored product with p.
func (a *Actions) Update(ctx context.Context, p catalog.Product) error {
	return ignoreRejection(a.update(ctx, p))
}

func (a *Actions) update(ctx context.Context, p catalog.Product) error {
	const action = "update"
	updated, err := a.client.Update(ctx, p.ID, p.Draft())
	if err != nil {
		return a.rejectOrFail(ctx, action, err)
	}
	if updated.ID == "" {
		updated.ID = p.ID
	}
	a.products.CommitSave(updated)
	a.logger.InfoContext(ctx, "Product updated", "ID", updated.ID, "Name", updated.Name)
	a.record(ctx, action, outcomeOK)
	return nil
}

// Remove deletes the product and resets the form when it was being edited.
func (a *Actions) Remove(ctx context.Context, id catalog.ID) error {
	const action = "remove"
	if err := a.client.Remove(ctx, id); err != nil {
		return a.fail(ctx, action, err)
	}
	a.products.CommitRemove(id)
	a.logger.InfoContext(ctx, "Product removed", "ID", id)
	a.record(ctx, action, outcomeOK)
	return nil
}

// Edit loads p into the form buffer.
func (a *Actions) Edit(p catalog.Product) {
	a.products.SetForm(p)
}

// ResetForm abandons the current edit.
func (a *Actions) ResetForm() {
	a.products.ResetForm()
}

func (a *Actions) AddToCart(p catalog.Product) {
	a.cart.Add(p)
}

func (a *Actions) RemoveFromCart(id catalog.ID) {
	a.cart.Remove(id)
}

func (a *Actions) SubtractFromCart(id catalog.ID) {
	a.cart.Subtract(id)
}

// RejectedError reports a draft the API refused. Its details are already in
// the form errors when it is returned.
type RejectedError struct {
	Details []catalog.ErrorDetail
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("product rejected with %d validation errors", len(e.Details))
}

// rejectOrFail routes a validation failure into the form errors and returns
// a *RejectedError. Any other error is returned as is.
func (a *Actions) rejectOrFail(ctx context.Context, action string, err error) error {
	var ve *client.ValidationError
	if errors.As(err, &ve) {
		a.products.SetErrors(ve.Details)
		a.logger.InfoContext(ctx, "Save rejected", "action", action, "errors", len(ve.Details))
		a.record(ctx, action, outcomeRejected)
		return &RejectedError{Details: ve.Details}
	}
	return a.fail(ctx, action, err)
}

func ignoreRejection(err error) error {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return nil
	}
	return err
}

func (a *Actions) fail(ctx context.Context, action string, err error) error {
	a.logger.WarnContext(ctx, "Action failed", "action", action, "error", err)
	a.record(ctx, action, outcomeError)
	return err
}

func (a *Actions) record(ctx context.Context, action, outcome string) {
	a.counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}
