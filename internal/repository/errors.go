package repository

import "errors"

var (
	// ErrDuplicateEmail is returned when an insert collides with the unique
	// email index.
	ErrDuplicateEmail = errors.New("email already exists")

	ErrAccountNotFound    = errors.New("account not found")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrProductNotFound    = errors.New("product not found")

	// ErrVerificationTokenNotFound covers every failed redemption: unknown,
	// already consumed and mistyped tokens are deliberately indistinguishable.
	ErrVerificationTokenNotFound = errors.New("verification token not found")
)
