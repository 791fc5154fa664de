package access

import "errors"

var (
	ErrNotFound        = errors.New("access: not found")
	ErrConflict        = errors.New("access: already exists")
	ErrInvalidInput    = errors.New("access: invalid input")
	ErrUnauthenticated = errors.New("access: unauthenticated")
	ErrForbidden       = errors.New("access: forbidden")
)
