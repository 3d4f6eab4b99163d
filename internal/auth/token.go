package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obarros/lojinha/internal/constants"
	inErrors "github.com/obarros/lojinha/internal/errors"
	"github.com/obarros/lojinha/internal/otel"
)

// VerifyToken validates a backend-issued access token. The backend
// signs sessions with HS256 and the audience claim "authenticated".
func VerifyToken(c context.Context, secret string, token string) (*jwt.Token, error) {
	c, span := otel.Tracer.Start(c, "VerifyToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "VerifyToken").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	jwtToken, err := jwt.ParseWithClaims(token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithAudience(constants.AUDIENCE_AUTHENTICATED),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Msg("parsed claims")

	logger = logger.With().Str(constants.KEY_PROCESS, "validating token").Logger()
	logger.Trace().Msg("validating token")
	if !jwtToken.Valid {
		err = fmt.Errorf("failed validating token with error=%w", inErrors.ErrTokenInvalid)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, inErrors.ErrTokenInvalid
	}
	logger.Trace().Msg("validated token")

	return jwtToken, nil
}

type jwtTokenKey struct{}

type rawTokenKey struct{}

func AttachJwtToken(c context.Context, token *jwt.Token) context.Context {
	return context.WithValue(c, jwtTokenKey{}, token)
}

func JwtTokenFromContext(c context.Context) *jwt.Token {
	token, _ := c.Value(jwtTokenKey{}).(*jwt.Token)
	return token
}

// AttachAccessToken keeps the raw bearer token around so the store
// accessor can forward it and the backend can apply row-level access.
func AttachAccessToken(c context.Context, token string) context.Context {
	return context.WithValue(c, rawTokenKey{}, token)
}

func AccessTokenFromContext(c context.Context) string {
	token, _ := c.Value(rawTokenKey{}).(string)
	return token
}

func UserIdFromJwtToken(c context.Context) (uuid.UUID, error) {
	c, span := otel.Tracer.Start(c, "UserIdFromJwtToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "UserIdFromJwtToken").
		Str(constants.KEY_PROCESS, "getting userId from jwtToken").
		Logger()

	logger.Trace().Msg("getting jwtToken from context")
	jwtToken := JwtTokenFromContext(c)
	if jwtToken == nil {
		err := fmt.Errorf("failed getting jwtToken from context with error=%w", inErrors.ErrEmptyAuth)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	subject, err := jwtToken.Claims.GetSubject()
	if err != nil {
		err = fmt.Errorf("failed getting subject from jwt with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	logger.Trace().Msg("got subject from jwtToken")

	userId, err := uuid.Parse(subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject=%s with error=%w", subject, err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	logger.Trace().Msgf("parsed subject as userId=%s", userId.String())

	return userId, nil
}
