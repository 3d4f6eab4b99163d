package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/auth"
	"github.com/obarros/lojinha/internal/cart"
	"github.com/obarros/lojinha/internal/constants"
	inHttp "github.com/obarros/lojinha/internal/http"
	"github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/internal/product"
	"github.com/obarros/lojinha/pkg/request"
	"github.com/obarros/lojinha/pkg/response"
)

type CartController struct {
	storage cart.Storage
	catalog *product.Catalog
}

func AttachCartController(mux *mux.Router, storage cart.Storage, catalog *product.Catalog) {
	controller := CartController{storage: storage, catalog: catalog}

	router := mux.PathPrefix("/cart").Subrouter()
	router.HandleFunc("", controller.FindCart).Methods(http.MethodGet)
	router.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/items", controller.AddCartItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{productId}", controller.UpdateCartItemQuantity).
		Methods(http.MethodPut)
	router.HandleFunc("/items/{productId}", controller.RemoveCartItem).Methods(http.MethodDelete)
	router.HandleFunc("/items/{productId}/increment", controller.IncrementCartItem).
		Methods(http.MethodPost)
	router.HandleFunc("/items/{productId}/decrement", controller.DecrementCartItem).
		Methods(http.MethodPost)
	router.HandleFunc("/shipping", controller.CalculateShipping).Methods(http.MethodPost)
}

func (t CartController) manager(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
) (*cart.Manager, *zerolog.Logger, bool) {
	c := r.Context()
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, tag).
		Str(constants.KEY_PROCESS, "getting userId from jwtToken").
		Logger()

	logger.Info().Msg("getting userId from jwtToken")
	userId, err := auth.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
		})
		return nil, nil, false
	}
	logger = logger.With().Str(constants.KEY_USER_ID, userId.String()).Logger()
	logger.Info().Msgf("got userId=%s", userId.String())

	return cart.NewManager(c, t.storage, userId.String()), &logger, true
}

func (t CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()
	r = r.WithContext(c)

	manager, _, ok := t.manager(w, r, "CartController FindCart")
	if !ok {
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found cart",
		"data": map[string]interface{}{
			"cart": response.NewCart(manager),
		},
	})
}

func (t CartController) AddCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddCartItem")
	defer span.End()
	r = r.WithContext(c)

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartController AddCartItem").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.AddCartItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(constants.KEY_PROCESS, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().
		Str(constants.KEY_PRODUCT_ID, reqBody.ProductId.String()).
		Str(constants.KEY_PROCESS, "finding product").
		Logger()
	logger.Info().Msg("finding product")
	item, found := t.catalog.FindById(c, reqBody.ProductId)
	if !found {
		err := fmt.Errorf("product with id=%s not found", reqBody.ProductId.String())
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found product")

	manager, mLogger, ok := t.manager(w, r, "CartController AddCartItem")
	if !ok {
		return
	}

	mLogger.Info().Msg("adding product to cart")
	manager.AddToCart(c, item)
	mLogger.Info().Msg("added product to cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "added product to cart",
		"data": map[string]interface{}{
			"cart": response.NewCart(manager),
		},
	})
}

func (t CartController) UpdateCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateCartItemQuantity")
	defer span.End()
	r = r.WithContext(c)

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartController UpdateCartItemQuantity").
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

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.UpdateCartItemQuantity{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	manager, mLogger, ok := t.manager(w, r, "CartController UpdateCartItemQuantity")
	if !ok {
		return
	}

	mLogger.Info().
		Int32(constants.KEY_QUANTITY, reqBody.Quantity).
		Msg("updating cart item quantity")
	manager.UpdateQuantity(c, productId, reqBody.Quantity)
	mLogger.Info().Msg("updated cart item quantity")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "updated cart item quantity",
		"data": map[string]interface{}{
			"cart": response.NewCart(manager),
		},
	})
}

func (t CartController) IncrementCartItem(w http.ResponseWriter, r *http.Request) {
	t.adjustQuantity(w, r, "CartController IncrementCartItem", (*cart.Manager).IncrementQuantity)
}

func (t CartController) DecrementCartItem(w http.ResponseWriter, r *http.Request) {
	t.adjustQuantity(w, r, "CartController DecrementCartItem", (*cart.Manager).DecrementQuantity)
}

func (t CartController) adjustQuantity(
	w http.ResponseWriter,
	r *http.Request,
	tag string,
	adjust func(*cart.Manager, context.Context, uuid.UUID),
) {
	c, span := otel.Tracer.Start(r.Context(), tag)
	defer span.End()
	r = r.WithContext(c)

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, tag).
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
	logger.Info().Msgf("validated productId=%s", productId.String())

	manager, mLogger, ok := t.manager(w, r, tag)
	if !ok {
		return
	}

	mLogger.Info().Msg("adjusting cart item quantity")
	adjust(manager, c, productId)
	mLogger.Info().Msg("adjusted cart item quantity")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "adjusted cart item quantity",
		"data": map[string]interface{}{
			"cart": response.NewCart(manager),
		},
	})
}

func (t CartController) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveCartItem")
	defer span.End()
	r = r.WithContext(c)

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartController RemoveCartItem").
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
	logger.Info().Msgf("validated productId=%s", productId.String())

	manager, mLogger, ok := t.manager(w, r, "CartController RemoveCartItem")
	if !ok {
		return
	}

	mLogger.Info().Msg("removing cart item")
	manager.RemoveItem(c, productId)
	mLogger.Info().Msg("removed cart item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "removed cart item",
		"data": map[string]interface{}{
			"cart": response.NewCart(manager),
		},
	})
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()
	r = r.WithContext(c)

	manager, mLogger, ok := t.manager(w, r, "CartController ClearCart")
	if !ok {
		return
	}

	mLogger.Info().Msg("clearing cart")
	manager.Clear(c)
	mLogger.Info().Msg("cleared cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cleared cart",
		"data": map[string]interface{}{
			"cart": response.NewCart(manager),
		},
	})
}

func (t CartController) CalculateShipping(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController CalculateShipping")
	defer span.End()
	r = r.WithContext(c)

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartController CalculateShipping").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.CalculateShipping{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(constants.KEY_PROCESS, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	manager, mLogger, ok := t.manager(w, r, "CartController CalculateShipping")
	if !ok {
		return
	}

	mLogger.Info().Str(constants.KEY_CEP, reqBody.Cep).Msg("calculating shipping")
	manager.CalculateShipping(c, reqBody.Cep)
	mLogger.Info().Msg("calculated shipping")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "calculated shipping",
		"data": map[string]interface{}{
			"cart": response.NewCart(manager),
		},
	})
}
