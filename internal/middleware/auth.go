package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/auth"
	"github.com/obarros/lojinha/internal/config"
	"github.com/obarros/lojinha/internal/constants"
	inErrors "github.com/obarros/lojinha/internal/errors"
	inHttp "github.com/obarros/lojinha/internal/http"
)

// Auth verifies the bearer token against the backend's signing secret
// and attaches both the parsed claims and the raw token to the request
// context. The raw token is forwarded to the data API so the backend
// can scope rows to the caller.
func Auth(cfg config.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(constants.KEY_TAG, "middleware auth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				logger.Error().
					Err(inErrors.ErrEmptyAuth).
					Msg(inErrors.ErrEmptyAuth.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrEmptyAuth.Error(),
				})
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			jwtToken, err := auth.VerifyToken(c, cfg.JwtSecret, token)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrTokenInvalid.Error(),
				})
				return
			}

			c = auth.AttachJwtToken(c, jwtToken)
			c = auth.AttachAccessToken(c, token)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
