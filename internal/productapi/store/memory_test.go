package store

import (
	"context"
	"testing"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// ProductStoreSuite exercises the in-memory ProductStore.
type ProductStoreSuite struct {
	suite.Suite
	store ProductStore
	ctx   context.Context
}

func (s *ProductStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
}

func TestProductStoreSuite(t *testing.T) {
	suite.Run(t, new(ProductStoreSuite))
}

func (s *ProductStoreSuite) TestCreateAndFind() {
	// given
	draft := catalog.Draft{Name: "Widget", Description: "blue", Price: 10}

	// when
	created, err := s.store.Create(s.ctx, draft)

	// then
	s.Require().NoError(err)
	_, parseErr := uuid.Parse(created.ID.String())
	s.NoError(parseErr, "ids are GUIDs")
	found, err := s.store.FindByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(draft.WithID(created.ID), *found)
}

func (s *ProductStoreSuite) TestFindAllKeepsInsertionOrder() {
	// given
	var ids []catalog.ID
	for _, name := range []string{"First", "Second", "Third"} {
		p, err := s.store.Create(s.ctx, catalog.Draft{Name: name, Price: 1})
		s.Require().NoError(err)
		ids = append(ids, p.ID)
	}

	// when
	s.Require().NoError(s.store.DeleteByID(s.ctx, ids[1]))
	_, err := s.store.Update(s.ctx, ids[0], catalog.Draft{Name: "First v2", Price: 2})
	s.Require().NoError(err)
	list, err := s.store.FindAll(s.ctx)

	// then
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(catalog.Product{ID: ids[0], Name: "First v2", Price: 2}, list[0])
	s.Equal(ids[2], list[1].ID)
}

func (s *ProductStoreSuite) TestMissingProduct() {
	missing := catalog.ID(uuid.NewString())

	_, err := s.store.FindByID(s.ctx, missing)
	s.ErrorIs(err, ErrProductNotFound)

	_, err = s.store.Update(s.ctx, missing, catalog.Draft{Name: "Widget", Price: 1})
	s.ErrorIs(err, ErrProductNotFound)

	s.ErrorIs(s.store.DeleteByID(s.ctx, missing), ErrProductNotFound)
}

func (s *ProductStoreSuite) TestFindAllEmpty() {
	list, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)
}

func (s *ProductStoreSuite) TestSeededStore() {
	// given
	seeded := NewSeededStore(5)

	// when
	list, err := seeded.FindAll(s.ctx)

	// then
	s.Require().NoError(err)
	s.Require().Len(list, 5)
	for i, p := range list {
		s.Equal("Product Item "+string(rune('0'+i)), p.Name)
		s.Equal(int64(99), p.Price)
		s.Equal(seedDescription, p.Description)
	}
}
