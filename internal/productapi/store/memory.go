package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/google/uuid"
)

const seedDescription = "Lorem ipsum dolor sit amet, consectetur adipisicing elit. Tempore, culpa."

// inMemory implements ProductStore using a map plus the insertion order.
type inMemory struct {
	mu       sync.RWMutex
	products map[catalog.ID]catalog.Product
	order    []catalog.ID
	newID    func() catalog.ID
}

// NewInMemoryStore creates an empty ProductStore.
func NewInMemoryStore() ProductStore {
	return newInMemory()
}

func newInMemory() *inMemory {
	return &inMemory{
		products: make(map[catalog.ID]catalog.Product),
		newID:    func() catalog.ID { return catalog.ID(uuid.NewString()) },
	}
}

// NewSeededStore creates a ProductStore holding count demo products.
func NewSeededStore(count int) ProductStore {
	s := newInMemory()
	for i := range count {
		s.insert(catalog.Draft{
			Name:        fmt.Sprintf("Product Item %d", i),
			Description: seedDescription,
			Price:       99,
		})
	}
	return s
}

func (s *inMemory) insert(draft catalog.Draft) catalog.Product {
	p := draft.WithID(s.newID())
	s.products[p.ID] = p
	s.order = append(s.order, p.ID)
	return p
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(_ context.Context, id catalog.ID) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

// FindAll retrieves all products.
func (s *inMemory) FindAll(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]catalog.Product, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.products[id])
	}
	return list, nil
}

// Create creates a new product and returns it.
func (s *inMemory) Create(_ context.Context, draft catalog.Draft) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.insert(draft)
	return &p, nil
}

// Update replaces the product stored under id, keeping its position.
func (s *inMemory) Update(_ context.Context, id catalog.ID, draft catalog.Draft) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return nil, ErrProductNotFound
	}
	p := draft.WithID(id)
	s.products[id] = p
	return &p, nil
}

// DeleteByID deletes a product by its ID.
func (s *inMemory) DeleteByID(_ context.Context, id catalog.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return ErrProductNotFound
	}
	delete(s.products, id)
	s.order = slices.DeleteFunc(s.order, func(existing catalog.ID) bool { return existing == id })
	return nil
}
