package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/obarros/lojinha/internal/auth"
	"github.com/obarros/lojinha/internal/cart"
	"github.com/obarros/lojinha/internal/checkout"
	"github.com/obarros/lojinha/internal/config"
	"github.com/obarros/lojinha/internal/constants"
	"github.com/obarros/lojinha/internal/controller"
	"github.com/obarros/lojinha/internal/infra"
	"github.com/obarros/lojinha/internal/middleware"
	"github.com/obarros/lojinha/internal/order"
	inOtel "github.com/obarros/lojinha/internal/otel"
	"github.com/obarros/lojinha/internal/product"
	"github.com/obarros/lojinha/internal/store"
	"github.com/obarros/lojinha/internal/store/postgres"
	"github.com/obarros/lojinha/internal/store/supabase"
)

func RunStorefront(c context.Context, cfg *config.Config) {
	c, span := inOtel.Tracer.Start(c, "RunStorefront")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "main RunStorefront").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.APP_STOREFRONT, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		err = inOtel.ShutdownOtel(c, shutdownFuncs)
		if err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing store").Logger()
	logger.Info().Msg("initializing store")
	var backend store.Store
	switch cfg.Store.Backend {
	case "postgres":
		db := infra.NewDatabaseClient(c, cfg.Database)
		defer func() {
			logger = logger.With().Str(constants.KEY_PROCESS, "closing database").Logger()
			logger.Info().Msg("closing database")
			db.Close()
			logger.Info().Msg("closed database")
		}()
		backend = postgres.NewStore(db)
	default:
		backend = supabase.NewClient(cfg.Store)
	}
	logger.Info().Msgf("initialized store backend=%s", cfg.Store.Backend)

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing cart storage").Logger()
	logger.Info().Msg("initializing cart storage")
	var storage cart.Storage
	if cfg.Cache.Host != "" {
		cache := infra.NewCacheClient(c, cfg.Cache)
		defer func() {
			logger = logger.With().Str(constants.KEY_PROCESS, "closing cache").Logger()
			logger.Info().Msg("closing cache")
			if err := cache.Close(); err != nil {
				err = fmt.Errorf("failed closing cache with error=%w", err)
				inOtel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return
			}
			logger.Info().Msg("closed cache")
		}()
		storage = cart.NewRedisStorage(cache)
	} else {
		storage = cart.NewMemoryStorage()
	}
	logger.Info().Msg("initialized cart storage")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing auth client").Logger()
	logger.Info().Msg("initializing auth client")
	authClient := auth.NewClient(cfg.Store)
	go func() {
		for user := range authClient.Subscribe() {
			if user == nil {
				logger.Info().Msg("session ended")
				continue
			}
			logger.Info().
				Str(constants.KEY_USER_ID, user.ID.String()).
				Str(constants.KEY_EMAIL, user.Email).
				Msg("session started")
		}
	}()
	logger.Info().Msg("initialized auth client")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing catalog").Logger()
	logger.Info().Msg("initializing catalog")
	catalog := product.NewCatalog(backend)
	c = logger.WithContext(c)
	if err := catalog.Reload(c); err != nil {
		// The catalog reloads lazily on the first listing or lookup,
		// startup can proceed without it.
		logger.Warn().Err(err).Msg("could not load catalog at startup")
	}
	history := order.NewHistory(backend)
	flow := checkout.NewFlow(backend, history)
	logger.Info().Msg("initialized catalog")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Use(
		otelmux.Middleware(constants.APP_STOREFRONT),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	controller.AttachAuthController(router, authClient)
	controller.AttachProductController(router, catalog)

	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.Auth(cfg.Store))
	controller.AttachCartController(protected, storage, catalog)
	controller.AttachCheckoutController(protected, flow, storage)
	controller.AttachOrderController(protected, history)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext: func(net.Listener) context.Context {
			lg := logger.With().
				Reset().
				Timestamp().
				Caller().
				Stack().
				Str(constants.KEY_APP_NAME, constants.APP_STOREFRONT).
				Logger()
			c = lg.WithContext(c)
			return c
		},
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	defer func() {
		logger = logger.With().Str(constants.KEY_PROCESS, "shutting down server").Logger()
		logger.Info().Msg("shutting down server")
		err = server.Shutdown(c)
		if err != nil {
			err = fmt.Errorf("failed shutting down server with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown server")
	}()
	logger.Info().Msg("initialized server")

	go func() {
		logger = logger.With().Str(constants.KEY_PROCESS, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger = logger.With().Str(constants.KEY_PROCESS, "shutdown server").Logger()
			err = fmt.Errorf("encounter error=%w while running server", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())

			c = logger.WithContext(c)
			if err := inOtel.ShutdownOtel(c, shutdownFuncs); err != nil {
				err = fmt.Errorf("failed shutting down otel with error=%w", err)
				inOtel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
			}
			return
		}
		logger.Info().Msg("shutdown server")
	}()

	<-c.Done()
	logger = logger.With().Str(constants.KEY_PROCESS, "shutdown server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
}
