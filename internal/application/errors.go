package application

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses never reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrSKUTaken           = errors.New("SKU already exists")
)
