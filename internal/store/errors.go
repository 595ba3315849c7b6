package store

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateEmail is returned when creating a user whose email
	// address is already registered.
	ErrDuplicateEmail = errors.New("store: email already registered")

	// ErrTokenConsumed is returned when a one-time token or code is
	// missing, expired, or was already used. The three cases are not
	// distinguished.
	ErrTokenConsumed = errors.New("store: token invalid or already used")
)
