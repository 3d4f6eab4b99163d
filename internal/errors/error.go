package errors

import (
	"errors"
)

var (
	ErrCartEmpty        = errors.New("cart is empty")
	ErrCepRequired      = errors.New("postal code is required")
	ErrCheckoutInFlight = errors.New("checkout already in progress")
	ErrEmptyAuth        = errors.New("missing authorization")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrSignUpFailed     = errors.New("could not create the account, email may already be registered")
	ErrOrderNotFound    = errors.New("order not found")
)
