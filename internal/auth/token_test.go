package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const testSecret = "super-secret"

func signToken(t *testing.T, claims jwt.RegisteredClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func TestVerifyToken(t *testing.T) {
	userId := uuid.New()
	valid := jwt.RegisteredClaims{
		Subject:   userId.String(),
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	t.Run("accepts a valid token", func(t *testing.T) {
		token, err := VerifyToken(context.Background(), testSecret, signToken(t, valid, testSecret))
		assert.NoError(t, err)
		assert.True(t, token.Valid)
	})

	t.Run("rejects a wrong secret", func(t *testing.T) {
		_, err := VerifyToken(context.Background(), testSecret, signToken(t, valid, "other"))
		assert.Error(t, err)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := valid
		expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		_, err := VerifyToken(context.Background(), testSecret, signToken(t, expired, testSecret))
		assert.Error(t, err)
	})

	t.Run("rejects a missing expiration", func(t *testing.T) {
		noExp := valid
		noExp.ExpiresAt = nil
		_, err := VerifyToken(context.Background(), testSecret, signToken(t, noExp, testSecret))
		assert.Error(t, err)
	})

	t.Run("rejects a wrong audience", func(t *testing.T) {
		anon := valid
		anon.Audience = jwt.ClaimStrings{"anon"}
		_, err := VerifyToken(context.Background(), testSecret, signToken(t, anon, testSecret))
		assert.Error(t, err)
	})
}

func TestUserIdFromJwtToken(t *testing.T) {
	userId := uuid.New()
	claims := jwt.RegisteredClaims{
		Subject:   userId.String(),
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := VerifyToken(context.Background(), testSecret, signToken(t, claims, testSecret))
	assert.NoError(t, err)

	c := AttachJwtToken(context.Background(), token)
	parsed, err := UserIdFromJwtToken(c)

	assert.NoError(t, err)
	assert.Equal(t, userId, parsed)
}

func TestUserIdFromJwtTokenWithoutToken(t *testing.T) {
	_, err := UserIdFromJwtToken(context.Background())
	assert.Error(t, err)
}
