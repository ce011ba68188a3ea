package service

import "errors"

// User-facing failure classes. Handlers map these onto HTTP statuses; anything
// else that bubbles up out of a service is a plain 500.
var (
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email address is not verified")
	ErrTokenNotFound      = errors.New("invalid or expired token")
	ErrAlreadySubscribed  = errors.New("email is already subscribed")
	ErrNotAllowed         = errors.New("operation not allowed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
)
