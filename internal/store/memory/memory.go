// Package memory provides an in-memory Store implementation. It is the
// default backend for development and tests; data does not survive a
// restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zxdhiruu/Restroo/internal/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	users         map[string]*store.User // keyed by ID
	emailIndex    map[string]string      // lowercased email -> ID
	loginCodes    map[string]*store.LoginCode
	contacts      []*store.ContactRequest
	subscriptions map[string]*store.Subscription // keyed by user ID

	// now is swappable in tests.
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:         make(map[string]*store.User),
		emailIndex:    make(map[string]string),
		loginCodes:    make(map[string]*store.LoginCode),
		subscriptions: make(map[string]*store.Subscription),
		now:           time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Migrate is a no-op; there is no schema.
func (s *Store) Migrate(ctx context.Context) error { return nil }

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, u *store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := s.emailIndex[key]; exists {
		return store.ErrDuplicateEmail
	}

	cp := *u
	s.users[u.ID] = &cp
	s.emailIndex[key] = u.ID
	return nil
}

// GetUserByID fetches a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByEmail fetches a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

// UpdateUser persists changes to an existing user.
func (s *Store) UpdateUser(ctx context.Context, u *store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	if !strings.EqualFold(old.Email, u.Email) {
		key := strings.ToLower(u.Email)
		if _, taken := s.emailIndex[key]; taken {
			return store.ErrDuplicateEmail
		}
		delete(s.emailIndex, strings.ToLower(old.Email))
		s.emailIndex[key] = u.ID
	}

	cp := *u
	cp.UpdatedAt = s.now()
	s.users[u.ID] = &cp
	return nil
}

// SetResetToken records a reset token digest on the user.
func (s *Store) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.ResetTokenHash = &tokenHash
	exp := expiresAt
	u.ResetExpiresAt = &exp
	u.UpdatedAt = s.now()
	return nil
}

// ConsumeResetToken performs the find-update-clear sequence under a
// single lock so concurrent calls with the same digest cannot both
// succeed.
func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, u := range s.users {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash {
			continue
		}
		if u.ResetExpiresAt == nil || now.After(*u.ResetExpiresAt) {
			return nil, store.ErrTokenConsumed
		}
		u.PasswordHash = &newPasswordHash
		u.ResetTokenHash = nil
		u.ResetExpiresAt = nil
		u.UpdatedAt = now
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrTokenConsumed
}

// CreateLoginCode stores a one-time login code digest.
func (s *Store) CreateLoginCode(ctx context.Context, c *store.LoginCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.loginCodes[c.CodeHash] = &cp
	return nil
}

// ConsumeLoginCode fetches and deletes a login code in one step.
func (s *Store) ConsumeLoginCode(ctx context.Context, codeHash string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.loginCodes[codeHash]
	if !ok {
		return nil, store.ErrTokenConsumed
	}
	delete(s.loginCodes, codeHash)

	if s.now().After(c.ExpiresAt) {
		return nil, store.ErrTokenConsumed
	}
	u, ok := s.users[c.UserID]
	if !ok {
		return nil, store.ErrTokenConsumed
	}
	cp := *u
	return &cp, nil
}

// CreateContactRequest stores a contact-form submission.
func (s *Store) CreateContactRequest(ctx context.Context, r *store.ContactRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.contacts = append(s.contacts, &cp)
	return nil
}

// ListContactRequests returns all contact requests, newest first.
func (s *Store) ListContactRequests(ctx context.Context) ([]*store.ContactRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*store.ContactRequest, len(s.contacts))
	for i, r := range s.contacts {
		cp := *r
		out[i] = &cp
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreateSubscription stores a subscription, replacing any existing one
// for the same user.
func (s *Store) CreateSubscription(ctx context.Context, sub *store.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sub
	s.subscriptions[sub.UserID] = &cp
	return nil
}

// GetSubscriptionByUserID fetches a user's subscription.
func (s *Store) GetSubscriptionByUserID(ctx context.Context, userID string) (*store.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}
