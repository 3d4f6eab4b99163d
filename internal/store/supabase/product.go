package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/constants"
	"github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/internal/store"
)

func (cl *Client) ListProducts(c context.Context) ([]store.Product, error) {
	c, span := otel.Tracer.Start(c, "SupabaseStore ListProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "SupabaseStore ListProducts").
		Str(constants.KEY_PROCESS, "listing products").
		Logger()

	logger.Info().Msg("listing products")
	products := []store.Product{}
	err := cl.do(c, request{
		method: http.MethodGet,
		table:  "products",
		query:  url.Values{"select": {"*"}, "order": {"created_at.desc"}},
	}, &products)
	if err != nil {
		err = fmt.Errorf("failed listing products with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("listed %d products", len(products))

	return products, nil
}

func (cl *Client) InsertProduct(c context.Context, product store.Product) (store.Product, error) {
	c, span := otel.Tracer.Start(c, "SupabaseStore InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "SupabaseStore InsertProduct").
		Str(constants.KEY_PROCESS, "inserting product").
		Logger()

	logger.Info().Msg("inserting product")
	inserted := store.Product{}
	err := cl.do(c, request{
		method: http.MethodPost,
		table:  "products",
		prefer: preferRepresentation,
		single: true,
		body: map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"image_url":   product.ImageUrl,
		},
	}, &inserted)
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Product{}, err
	}
	logger = logger.With().Str(constants.KEY_PRODUCT_ID, inserted.ID.String()).Logger()
	logger.Info().Msg("inserted product")

	return inserted, nil
}

func (cl *Client) UpdateProduct(c context.Context, product store.Product) (store.Product, error) {
	c, span := otel.Tracer.Start(c, "SupabaseStore UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "SupabaseStore UpdateProduct").
		Str(constants.KEY_PRODUCT_ID, product.ID.String()).
		Str(constants.KEY_PROCESS, "updating product").
		Logger()

	logger.Info().Msg("updating product")
	updated := store.Product{}
	err := cl.do(c, request{
		method: http.MethodPatch,
		table:  "products",
		query:  url.Values{"id": {eq(product.ID)}},
		prefer: preferRepresentation,
		single: true,
		body: map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"image_url":   product.ImageUrl,
		},
	}, &updated)
	if err != nil {
		err = fmt.Errorf("failed updating product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Product{}, err
	}
	logger.Info().Msg("updated product")

	return updated, nil
}

func (cl *Client) DeleteProduct(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "SupabaseStore DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "SupabaseStore DeleteProduct").
		Str(constants.KEY_PRODUCT_ID, id.String()).
		Str(constants.KEY_PROCESS, "deleting product").
		Logger()

	logger.Info().Msg("deleting product")
	err := cl.do(c, request{
		method: http.MethodDelete,
		table:  "products",
		query:  url.Values{"id": {eq(id)}},
	}, nil)
	if err != nil {
		err = fmt.Errorf("failed deleting product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted product")

	return nil
}
