package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/constants"
	inHttp "github.com/obarros/lojinha/internal/http"
	"github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/internal/product"
	"github.com/obarros/lojinha/internal/store"
	"github.com/obarros/lojinha/pkg/request"
)

type ProductController struct {
	catalog *product.Catalog
}

func AttachProductController(mux *mux.Router, catalog *product.Catalog) {
	controller := ProductController{catalog: catalog}

	router := mux.PathPrefix("/products").Subrouter()
	router.HandleFunc("", controller.FindProducts).Methods(http.MethodGet)
	router.HandleFunc("", controller.InsertProduct).Methods(http.MethodPost)
	router.HandleFunc("/{productId}", controller.UpdateProduct).Methods(http.MethodPut)
	router.HandleFunc("/{productId}", controller.DeleteProduct).Methods(http.MethodDelete)
}

func (t ProductController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController FindProducts").
		Str(constants.KEY_PROCESS, "finding products").
		Logger()

	logger.Info().Msg("finding products")
	products := t.catalog.Products()
	if len(products) == 0 {
		if err := t.catalog.Reload(c); err != nil {
			err = fmt.Errorf("failed finding products with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusBadGateway,
				"message":    err.Error(),
			})
			return
		}
		products = t.catalog.Products()
	}
	logger.Info().Msgf("found %d products", len(products))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found products",
		"data": map[string]interface{}{
			"products": products,
		},
	})
}

func (t ProductController) InsertProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController InsertProduct").
		Logger()

	reqBody, ok := decodeUpsertProduct(w, r.WithContext(c), &logger)
	if !ok {
		return
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting product").Logger()
	logger.Info().Msg("inserting product")
	c = logger.WithContext(c)
	inserted, err := t.catalog.Add(c, store.Product{
		Name:        reqBody.Name,
		Description: reqBody.Description,
		Price:       reqBody.Price,
		ImageUrl:    reqBody.ImageUrl,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("inserted product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "inserted product",
		"data": map[string]interface{}{
			"product": inserted,
		},
	})
}

func (t ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController UpdateProduct").
		Str(constants.KEY_PROCESS, "validating productId").
		Logger()

	logger.Info().Msg("validating productId")
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed validating productId with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(constants.KEY_PRODUCT_ID, productId.String()).Logger()
	logger.Info().Msgf("validated productId=%s", productId.String())

	reqBody, ok := decodeUpsertProduct(w, r.WithContext(c), &logger)
	if !ok {
		return
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "updating product").Logger()
	logger.Info().Msg("updating product")
	c = logger.WithContext(c)
	updated, err := t.catalog.Update(c, store.Product{
		ID:          productId,
		Name:        reqBody.Name,
		Description: reqBody.Description,
		Price:       reqBody.Price,
		ImageUrl:    reqBody.ImageUrl,
	})
	if err != nil {
		err = fmt.Errorf("failed updating product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "updated product",
		"data": map[string]interface{}{
			"product": updated,
		},
	})
}

func (t ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "ProductController DeleteProduct").
		Str(constants.KEY_PROCESS, "validating productId").
		Logger()

	logger.Info().Msg("validating productId")
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed validating productId with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(constants.KEY_PRODUCT_ID, productId.String()).Logger()
	logger.Info().Msgf("validated productId=%s", productId.String())

	logger = logger.With().Str(constants.KEY_PROCESS, "deleting product").Logger()
	logger.Info().Msg("deleting product")
	c = logger.WithContext(c)
	if err := t.catalog.Delete(c, productId); err != nil {
		err = fmt.Errorf("failed deleting product with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("deleted product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "deleted product",
	})
}

func decodeUpsertProduct(
	w http.ResponseWriter,
	r *http.Request,
	logger *zerolog.Logger,
) (request.UpsertProduct, bool) {
	c := r.Context()
	l := logger.With().Str(constants.KEY_PROCESS, "decoding requestbody").Logger()
	l.Info().Msg("decoding requestbody")
	reqBody := request.UpsertProduct{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		l.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return request.UpsertProduct{}, false
	}
	l.Info().Msg("decoded request body")

	l = logger.With().Str(constants.KEY_PROCESS, "validating requestbody").Logger()
	l.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		l.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return request.UpsertProduct{}, false
	}
	l.Info().Msg("validated request body")

	return reqBody, true
}
