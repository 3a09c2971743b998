package service

import "errors"

var (
	// ErrEmailTaken signals a duplicate registration; the client is
	// expected to steer the user to the login form.
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrOrderEmpty         = errors.New("order must contain at least one item")
	ErrOrderNotEditable   = errors.New("order can no longer be edited")
)
