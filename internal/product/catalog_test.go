package product

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/obarros/lojinha/internal/store"
)

type fakeStore struct {
	store.Store

	products   []store.Product
	listCalls  int
	listErr    error
	insertErr  error
	deleteErr  error
	lastInsert store.Product
}

func (f *fakeStore) ListProducts(c context.Context) ([]store.Product, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.products, nil
}

func (f *fakeStore) InsertProduct(c context.Context, p store.Product) (store.Product, error) {
	if f.insertErr != nil {
		return store.Product{}, f.insertErr
	}
	p.ID = uuid.New()
	f.lastInsert = p
	f.products = append(f.products, p)
	return p, nil
}

func (f *fakeStore) UpdateProduct(c context.Context, p store.Product) (store.Product, error) {
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = p
		}
	}
	return p, nil
}

func (f *fakeStore) DeleteProduct(c context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.products[:0]
	for _, p := range f.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.products = kept
	return nil
}

func TestCatalogReloadReplacesSnapshot(t *testing.T) {
	c := context.Background()
	backend := &fakeStore{products: []store.Product{{ID: uuid.New(), Name: "caneca"}}}
	catalog := NewCatalog(backend)

	assert.Empty(t, catalog.Products())
	assert.NoError(t, catalog.Reload(c))
	assert.Len(t, catalog.Products(), 1)

	backend.products = nil
	assert.NoError(t, catalog.Reload(c))
	assert.Empty(t, catalog.Products())
}

func TestCatalogReloadFailureKeepsSnapshot(t *testing.T) {
	c := context.Background()
	backend := &fakeStore{products: []store.Product{{ID: uuid.New(), Name: "caneca"}}}
	catalog := NewCatalog(backend)
	assert.NoError(t, catalog.Reload(c))

	backend.listErr = errors.New("backend unavailable")
	assert.Error(t, catalog.Reload(c))
	assert.Len(t, catalog.Products(), 1)
}

func TestCatalogFindById(t *testing.T) {
	c := context.Background()
	product := store.Product{ID: uuid.New(), Name: "caneca"}
	backend := &fakeStore{products: []store.Product{product}}
	catalog := NewCatalog(backend)
	assert.NoError(t, catalog.Reload(c))

	found, ok := catalog.FindById(c, product.ID)
	assert.True(t, ok)
	assert.Equal(t, "caneca", found.Name)

	_, ok = catalog.FindById(c, uuid.New())
	assert.False(t, ok)
}

func TestCatalogFindByIdReloadsWhenSnapshotEmpty(t *testing.T) {
	c := context.Background()
	product := store.Product{ID: uuid.New(), Name: "caneca"}
	backend := &fakeStore{products: []store.Product{product}}
	catalog := NewCatalog(backend)

	found, ok := catalog.FindById(c, product.ID)

	assert.True(t, ok)
	assert.Equal(t, "caneca", found.Name)
	assert.Equal(t, 1, backend.listCalls)

	// The snapshot is warm now, the next lookup stays local.
	_, ok = catalog.FindById(c, product.ID)
	assert.True(t, ok)
	assert.Equal(t, 1, backend.listCalls)
}

func TestCatalogAddWritesThroughAndReloads(t *testing.T) {
	c := context.Background()
	backend := &fakeStore{}
	catalog := NewCatalog(backend)

	inserted, err := catalog.Add(c, store.Product{
		Name:  "caneca",
		Price: decimal.RequireFromString("29.90"),
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, inserted.ID)
	assert.Len(t, catalog.Products(), 1)
	assert.Equal(t, 1, backend.listCalls)
}

func TestCatalogDeleteReloads(t *testing.T) {
	c := context.Background()
	product := store.Product{ID: uuid.New(), Name: "caneca"}
	backend := &fakeStore{products: []store.Product{product}}
	catalog := NewCatalog(backend)
	assert.NoError(t, catalog.Reload(c))

	assert.NoError(t, catalog.Delete(c, product.ID))
	assert.Empty(t, catalog.Products())
}
