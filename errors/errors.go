// Package errors holds the sentinel errors shared by the store, the chat core and the HTTP layer.
// Callers wrap them with fmt.Errorf("...: %w", err) and match with errors.Is.
package errors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidPair      = errors.New("invalid user pair")
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)
