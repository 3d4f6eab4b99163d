package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/auth"
	"github.com/obarros/lojinha/internal/cart"
	"github.com/obarros/lojinha/internal/checkout"
	"github.com/obarros/lojinha/internal/constants"
	inErrors "github.com/obarros/lojinha/internal/errors"
	inHttp "github.com/obarros/lojinha/internal/http"
	"github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/pkg/response"
)

type CheckoutController struct {
	flow    *checkout.Flow
	storage cart.Storage
}

func AttachCheckoutController(mux *mux.Router, flow *checkout.Flow, storage cart.Storage) {
	controller := CheckoutController{flow: flow, storage: storage}

	mux.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
}

func (t CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CheckoutController Checkout").
		Str(constants.KEY_PROCESS, "getting userId from jwtToken").
		Logger()

	logger.Info().Msg("getting userId from jwtToken")
	userId, err := auth.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(constants.KEY_USER_ID, userId.String()).Logger()
	logger.Info().Msgf("got userId=%s", userId.String())

	logger = logger.With().Str(constants.KEY_PROCESS, "submitting checkout").Logger()
	logger.Info().Msg("submitting checkout")
	c = logger.WithContext(c)
	manager := cart.NewManager(c, t.storage, userId.String())
	placed, err := t.flow.Submit(c, userId, manager)
	if err != nil {
		err = fmt.Errorf("failed submitting checkout with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusBadRequest
		switch {
		case errors.Is(err, inErrors.ErrCheckoutInFlight):
			statusCode = http.StatusConflict
		case errors.Is(err, inErrors.ErrCartEmpty), errors.Is(err, inErrors.ErrCepRequired):
			statusCode = http.StatusUnprocessableEntity
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(constants.KEY_ORDER_ID, placed.ID.String()).Logger()
	logger.Info().Msg("submitted checkout")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    fmt.Sprintf("orderId=%s placed", placed.ID.String()),
		"data": map[string]interface{}{
			"order": placed,
			"cart":  response.NewCart(manager),
		},
	})
}
