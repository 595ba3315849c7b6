// Package store defines the persistence interface and the records that
// flow through it. Two implementations exist: an in-memory store for
// tests and development, and a SQL store supporting PostgreSQL and
// MySQL.
package store

import (
	"context"
	"time"
)

// Store is the persistence interface the rest of the service is built
// against. Implementations must be safe for concurrent use.
type Store interface {
	// Ping checks connectivity to the backing storage.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error

	// Migrate creates or updates the schema. It is idempotent.
	Migrate(ctx context.Context) error

	// CreateUser inserts a new user. Returns ErrDuplicateEmail when the
	// email address is already registered (case-insensitive).
	CreateUser(ctx context.Context, u *User) error

	// GetUserByID fetches a user by ID. Returns ErrNotFound when absent.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail fetches a user by email address, matched
	// case-insensitively. Returns ErrNotFound when absent.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdateUser persists changes to an existing user.
	UpdateUser(ctx context.Context, u *User) error

	// SetResetToken records a password-reset token digest and its
	// expiry on the user, replacing any previous one.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ConsumeResetToken atomically finds the user holding an unexpired
	// reset token with the given digest, sets their password hash, and
	// clears the token. It is a single conditional write: a second call
	// with the same digest returns ErrTokenConsumed.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*User, error)

	// CreateLoginCode stores a one-time login code digest.
	CreateLoginCode(ctx context.Context, c *LoginCode) error

	// ConsumeLoginCode atomically fetches and deletes an unexpired
	// login code by digest, returning the user it was minted for.
	// Returns ErrTokenConsumed when the code is unknown, expired, or
	// already used.
	ConsumeLoginCode(ctx context.Context, codeHash string) (*User, error)

	// CreateContactRequest stores a contact-form submission.
	CreateContactRequest(ctx context.Context, r *ContactRequest) error

	// ListContactRequests returns all contact requests, newest first.
	ListContactRequests(ctx context.Context) ([]*ContactRequest, error)

	// CreateSubscription stores a new subscription, replacing any
	// existing subscription for the same user.
	CreateSubscription(ctx context.Context, s *Subscription) error

	// GetSubscriptionByUserID fetches a user's subscription. Returns
	// ErrNotFound when the user has none.
	GetSubscriptionByUserID(ctx context.Context, userID string) (*Subscription, error)
}
