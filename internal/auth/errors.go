package auth

import "errors"

var (
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountDisabled    = errors.New("auth: account disabled")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrNotFound           = errors.New("auth: not found")
)
