package product

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/constants"
	"github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/internal/store"
)

// Catalog caches the product list between reloads so browsing does not
// hit the backend on every request. Mutations write through the store
// and then reload.
type Catalog struct {
	store store.Store

	mu       sync.RWMutex
	products []store.Product
}

func NewCatalog(store store.Store) *Catalog {
	return &Catalog{store: store}
}

func (ct *Catalog) Reload(c context.Context) error {
	c, span := otel.Tracer.Start(c, "Catalog Reload")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Catalog Reload").
		Str(constants.KEY_PROCESS, "reloading products").
		Logger()

	logger.Info().Msg("reloading products")
	products, err := ct.store.ListProducts(c)
	if err != nil {
		err = fmt.Errorf("failed reloading products with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	ct.mu.Lock()
	ct.products = products
	ct.mu.Unlock()
	logger.Info().Msgf("reloaded %d products", len(products))

	return nil
}

func (ct *Catalog) Products() []store.Product {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	products := make([]store.Product, len(ct.products))
	copy(products, ct.products)
	return products
}

// FindById looks the product up in the snapshot. An empty snapshot
// triggers a reload first, so a failed startup load heals on the
// first lookup instead of turning every product into a miss.
func (ct *Catalog) FindById(c context.Context, id uuid.UUID) (store.Product, bool) {
	ct.mu.RLock()
	empty := len(ct.products) == 0
	ct.mu.RUnlock()
	if empty {
		if err := ct.Reload(c); err != nil {
			return store.Product{}, false
		}
	}

	ct.mu.RLock()
	defer ct.mu.RUnlock()
	for _, product := range ct.products {
		if product.ID == id {
			return product, true
		}
	}
	return store.Product{}, false
}

func (ct *Catalog) Add(c context.Context, product store.Product) (store.Product, error) {
	c, span := otel.Tracer.Start(c, "Catalog Add")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Catalog Add").
		Str(constants.KEY_PROCESS, "adding product").
		Logger()

	logger.Info().Msg("adding product")
	inserted, err := ct.store.InsertProduct(c, product)
	if err != nil {
		err = fmt.Errorf("failed adding product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Product{}, err
	}
	logger.Info().Msg("added product")

	if err := ct.Reload(c); err != nil {
		return store.Product{}, err
	}
	return inserted, nil
}

func (ct *Catalog) Update(c context.Context, product store.Product) (store.Product, error) {
	c, span := otel.Tracer.Start(c, "Catalog Update")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Catalog Update").
		Str(constants.KEY_PRODUCT_ID, product.ID.String()).
		Str(constants.KEY_PROCESS, "updating product").
		Logger()

	logger.Info().Msg("updating product")
	updated, err := ct.store.UpdateProduct(c, product)
	if err != nil {
		err = fmt.Errorf("failed updating product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Product{}, err
	}
	logger.Info().Msg("updated product")

	if err := ct.Reload(c); err != nil {
		return store.Product{}, err
	}
	return updated, nil
}

func (ct *Catalog) Delete(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "Catalog Delete")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Catalog Delete").
		Str(constants.KEY_PRODUCT_ID, id.String()).
		Str(constants.KEY_PROCESS, "deleting product").
		Logger()

	logger.Info().Msg("deleting product")
	if err := ct.store.DeleteProduct(c, id); err != nil {
		err = fmt.Errorf("failed deleting product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted product")

	return ct.Reload(c)
}
