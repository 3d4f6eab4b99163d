package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/auth"
	"github.com/obarros/lojinha/internal/constants"
	inHttp "github.com/obarros/lojinha/internal/http"
	"github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/pkg/request"
)

type AuthController struct {
	client *auth.Client
}

func AttachAuthController(mux *mux.Router, client *auth.Client) {
	controller := AuthController{client: client}

	router := mux.PathPrefix("/auth").Subrouter()
	router.HandleFunc("/register", controller.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", controller.Login).Methods(http.MethodPost)
	router.HandleFunc("/logout", controller.Logout).Methods(http.MethodPost)
}

func (t AuthController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AuthController Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "AuthController Register").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Register{}
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
	logger = logger.With().Object(constants.KEY_REQUEST, reqBody).Logger()
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

	logger = logger.With().Str(constants.KEY_PROCESS, "signing up").Logger()
	logger.Info().Msg("signing up")
	c = logger.WithContext(c)
	result, err := t.client.SignUp(c, reqBody.Email, reqBody.Password)
	if err != nil {
		err = fmt.Errorf("failed signing up with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("signed up")

	message := "account created"
	if result.RequiresConfirmation {
		message = "account created, check your email to confirm registration"
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    message,
		"data": map[string]interface{}{
			"user":                  result.User,
			"requires_confirmation": result.RequiresConfirmation,
		},
	})
}

func (t AuthController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AuthController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "AuthController Login").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Login{}
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
	logger = logger.With().Object(constants.KEY_REQUEST, reqBody).Logger()
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

	logger = logger.With().Str(constants.KEY_PROCESS, "signing in").Logger()
	logger.Info().Msg("signing in")
	c = logger.WithContext(c)
	session, err := t.client.SignIn(c, reqBody.Email, reqBody.Password)
	if err != nil {
		err = fmt.Errorf("failed signing in with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("signed in")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "signed in",
		"data": map[string]interface{}{
			"session": session,
		},
	})
}

func (t AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AuthController Logout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "AuthController Logout").
		Str(constants.KEY_PROCESS, "signing out").
		Logger()

	logger.Info().Msg("signing out")
	c = logger.WithContext(c)
	token := auth.AccessTokenFromContext(c)
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if err := t.client.SignOut(c, token); err != nil {
		err = fmt.Errorf("failed signing out with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("signed out")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "signed out",
	})
}
