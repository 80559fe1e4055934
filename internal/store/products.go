package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/abgdnv/storefront/internal/catalog"
)

// ProductMutation is the closed set of changes to the product state.
type ProductMutation interface {
	isProductMutation()
}

// ProductsLoaded replaces the collection with a freshly fetched list.
type ProductsLoaded struct {
	Products []catalog.Product
}

// ProductSaved merges a confirmed create or update into the collection.
// With ResetForm set the form and its errors are cleared in the same commit.
type ProductSaved struct {
	Product   catalog.Product
	ResetForm bool
}

// ProductRemoved drops a product from the collection. With ResetEditedForm set
// the form is reset in the same commit when it holds that product.
type ProductRemoved struct {
	ID              catalog.ID
	ResetEditedForm bool
}

// FormSet replaces the form buffer.
type FormSet struct {
	Product catalog.Product
}

// FormReset restores the empty form and clears the recorded errors.
type FormReset struct{}

// ErrorsSet records the latest failed save.
type ErrorsSet struct {
	Errors []catalog.ErrorDetail
}

func (ProductsLoaded) isProductMutation() {}
func (ProductSaved) isProductMutation()   {}
func (ProductRemoved) isProductMutation() {}
func (FormSet) isProductMutation()        {}
func (FormReset) isProductMutation()      {}
func (ErrorsSet) isProductMutation()      {}

// ProductState is a point-in-time view of the product store.
type ProductState struct {
	Products []catalog.Product     `json:"products"`
	Form     catalog.Product       `json:"form"`
	Errors   []catalog.ErrorDetail `json:"errors"`
	Version  uint64                `json:"version"`
}

// Products owns the product collection, the form buffer and the form errors.
type Products struct {
	mu    sync.RWMutex
	state ProductState
}

// NewProducts returns an empty store with the form at its template.
func NewProducts() *Products {
	return &Products{
		state: ProductState{
			Products: []catalog.Product{},
			Form:     catalog.EmptyForm(),
		},
	}
}

// Commit applies m and returns the new version.
func (s *Products) Commit(m ProductMutation) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := reduceProducts(s.state, m)
	next.Version = s.state.Version + 1
	s.state = next
	return next.Version
}

func reduceProducts(st ProductState, m ProductMutation) ProductState {
	switch m := m.(type) {
	case ProductsLoaded:
		st.Products = cloneProducts(m.Products)
	case ProductSaved:
		st.Products = upsert(st.Products, m.Product)
		if m.ResetForm {
			st = resetForm(st)
		}
	case ProductRemoved:
		st.Products = removeProduct(st.Products, m.ID)
		if m.ResetEditedForm && m.ID != "" && st.Form.ID == m.ID {
			st = resetForm(st)
		}
	case FormSet:
		st.Form = m.Product
	case FormReset:
		st = resetForm(st)
	case ErrorsSet:
		st.Errors = slices.Clone(m.Errors)
	default:
		panic(fmt.Sprintf("store: unknown product mutation %T", m))
	}
	return st
}

func resetForm(st ProductState) ProductState {
	st.Form = catalog.EmptyForm()
	st.Errors = nil
	return st
}

// upsert replaces the product with the same id in place or appends it.
func upsert(products []catalog.Product, p catalog.Product) []catalog.Product {
	next := cloneProducts(products)
	idx := slices.IndexFunc(next, func(existing catalog.Product) bool {
		return existing.ID == p.ID
	})
	if idx >= 0 {
		next[idx] = p
		return next
	}
	return append(next, p)
}

func removeProduct(products []catalog.Product, id catalog.ID) []catalog.Product {
	next := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			next = append(next, p)
		}
	}
	return next
}

func cloneProducts(products []catalog.Product) []catalog.Product {
	next := make([]catalog.Product, len(products), len(products)+1)
	copy(next, products)
	return next
}

// SetAll replaces the whole collection, keeping the received order.
func (s *Products) SetAll(products []catalog.Product) {
	s.Commit(ProductsLoaded{Products: products})
}

// Upsert merges a confirmed product into the collection.
func (s *Products) Upsert(p catalog.Product) {
	s.Commit(ProductSaved{Product: p})
}

// CommitSave merges a product the API confirmed and resets the form, as one commit.
func (s *Products) CommitSave(p catalog.Product) {
	s.Commit(ProductSaved{Product: p, ResetForm: true})
}

// CommitRemove drops the product and resets the form if it was being edited, as one commit.
func (s *Products) CommitRemove(id catalog.ID) {
	s.Commit(ProductRemoved{ID: id, ResetEditedForm: true})
}

// Remove drops the product with id. Unknown ids are ignored.
func (s *Products) Remove(id catalog.ID) {
	s.Commit(ProductRemoved{ID: id})
}

// SetForm replaces the form buffer.
func (s *Products) SetForm(p catalog.Product) {
	s.Commit(FormSet{Product: p})
}

// ResetForm restores the empty form template and clears the form errors.
func (s *Products) ResetForm() {
	s.Commit(FormReset{})
}

// SetErrors records the latest failure.
func (s *Products) SetErrors(errs []catalog.ErrorDetail) {
	s.Commit(ErrorsSet{Errors: errs})
}

// Snapshot returns a copy of the current state.
func (s *Products) Snapshot() ProductState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	snap.Products = slices.Clone(s.state.Products)
	snap.Errors = slices.Clone(s.state.Errors)
	return snap
}

func (s *Products) Products() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Products)
}

func (s *Products) Form() catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Form
}

func (s *Products) Errors() []catalog.ErrorDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Errors)
}

// Find returns the product with id.
func (s *Products) Find(id catalog.ID) (catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.state.Products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

// Has reports whether a product with id is in the collection.
func (s *Products) Has(id catalog.ID) bool {
	_, ok := s.Find(id)
	return ok
}

func (s *Products) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Version
}
