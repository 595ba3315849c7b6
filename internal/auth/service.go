// Package auth implements account lifecycle and session management:
// password signup and login, password reset over one-time emailed
// tokens, Google sign-in, and bearer-token authentication.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	mailer "github.com/zxdhiruu/Restroo/internal/mail"
	"github.com/zxdhiruu/Restroo/internal/password"
	"github.com/zxdhiruu/Restroo/internal/store"
	"github.com/zxdhiruu/Restroo/internal/token"
)

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// ResetTokenTTL is how long a password-reset token stays valid.
	ResetTokenTTL = time.Hour

	// LoginCodeTTL is how long a post-OAuth login code stays valid.
	// It only needs to survive one browser redirect.
	LoginCodeTTL = 2 * time.Minute
)

// Service wires the store, hasher, token service, and mailer into the
// account operations the HTTP layer exposes.
type Service struct {
	store  store.Store
	hasher password.Hasher
	tokens *token.Service
	mailer mailer.Mailer

	// resetURLBase is prepended to reset tokens in the email body,
	// e.g. "https://app.example.com/reset-password".
	resetURLBase string

	now func() time.Time
}

// Config configures the auth service.
type Config struct {
	Store        store.Store
	Hasher       password.Hasher
	Tokens       *token.Service
	Mailer       mailer.Mailer
	ResetURLBase string
}

// NewService creates the auth service. Store, Hasher, and Tokens are
// required; a nil Mailer falls back to logging.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("auth: store is required")
	}
	if cfg.Hasher == nil {
		return nil, fmt.Errorf("auth: hasher is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("auth: token service is required")
	}
	m := cfg.Mailer
	if m == nil {
		m = mailer.LogMailer{}
	}
	return &Service{
		store:        cfg.Store,
		hasher:       cfg.Hasher,
		tokens:       cfg.Tokens,
		mailer:       m,
		resetURLBase: cfg.ResetURLBase,
		now:          time.Now,
	}, nil
}

// normalizeEmail lowercases and trims an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail reports whether the address parses as an email.
func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// Signup registers a new password account and returns the user with a
// fresh session token.
func (s *Service) Signup(ctx context.Context, email, firstName, lastName, plain string) (*store.User, string, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, "", ErrInvalidEmail
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, "", ErrMissingName
	}
	if len(plain) < MinPasswordLength {
		return nil, "", ErrWeakPassword
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, "", fmt.Errorf("auth: hashing password: %w", err)
	}

	now := s.now()
	u := &store.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("auth: creating user: %w", err)
	}

	session, err := s.tokens.IssueSession(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("auth: issuing session: %w", err)
	}
	return u, session, nil
}

// Login verifies a password and returns the user with a fresh session
// token. Every failure is ErrInvalidCredentials; the caller cannot tell
// an unknown email from a wrong password.
func (s *Service) Login(ctx context.Context, email, plain string) (*store.User, string, error) {
	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so the miss is not observable.
			s.hasher.Verify(plain, "")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("auth: looking up user: %w", err)
	}

	if !u.HasPassword() || !s.hasher.Verify(plain, *u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	// Upgrade the stored hash when cost parameters have moved on.
	if s.hasher.NeedsRehash(*u.PasswordHash) {
		if newHash, err := s.hasher.Hash(plain); err == nil {
			u.PasswordHash = &newHash
			if err := s.store.UpdateUser(ctx, u); err != nil {
				log.Printf("auth: rehash update for %s failed: %v", u.ID, err)
			}
		}
	}

	session, err := s.tokens.IssueSession(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("auth: issuing session: %w", err)
	}
	return u, session, nil
}

// RequestPasswordReset mints a one-time reset token and emails it to
// the account. It reports success whether or not the email is
// registered so the endpoint cannot be used to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("auth: looking up user: %w", err)
	}

	raw, err := token.NewOpaque()
	if err != nil {
		return fmt.Errorf("auth: minting reset token: %w", err)
	}
	expiry := s.now().Add(ResetTokenTTL)
	if err := s.store.SetResetToken(ctx, u.ID, token.HashOpaque(raw), expiry); err != nil {
		return fmt.Errorf("auth: storing reset token: %w", err)
	}

	link := raw
	if s.resetURLBase != "" {
		link = s.resetURLBase + "?token=" + raw
	}
	body := fmt.Sprintf("Hi %s,\n\n"+
		"We received a request to reset your password. Use the link below "+
		"within the next hour:\n\n%s\n\n"+
		"If you did not request this, you can ignore this email.\n",
		u.FirstName, link)
	if err := s.mailer.Send(u.Email, "Reset your password", body); err != nil {
		return fmt.Errorf("auth: sending reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password. The
// token works exactly once.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPlain string) error {
	if len(newPlain) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := s.hasher.Hash(newPlain)
	if err != nil {
		return fmt.Errorf("auth: hashing password: %w", err)
	}

	if _, err := s.store.ConsumeResetToken(ctx, token.HashOpaque(rawToken), hash); err != nil {
		if errors.Is(err, store.ErrTokenConsumed) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("auth: consuming reset token: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its user. It fails with
// token.ErrInvalidToken for a bad token and store.ErrNotFound when the
// account behind a valid token no longer exists.
func (s *Service) Authenticate(ctx context.Context, bearer string) (*store.User, error) {
	userID, err := s.tokens.VerifySession(bearer)
	if err != nil {
		return nil, err
	}
	return s.store.GetUserByID(ctx, userID)
}

// IssueLoginCode mints a short-lived one-time code the browser can
// exchange for a session token. Used after OAuth sign-in so the session
// token never appears in a redirect URL.
func (s *Service) IssueLoginCode(ctx context.Context, userID string) (string, error) {
	raw, err := token.NewOpaque()
	if err != nil {
		return "", fmt.Errorf("auth: minting login code: %w", err)
	}
	c := &store.LoginCode{
		CodeHash:  token.HashOpaque(raw),
		UserID:    userID,
		ExpiresAt: s.now().Add(LoginCodeTTL),
	}
	if err := s.store.CreateLoginCode(ctx, c); err != nil {
		return "", fmt.Errorf("auth: storing login code: %w", err)
	}
	return raw, nil
}

// ExchangeLoginCode consumes a one-time login code and returns the user
// with a session token.
func (s *Service) ExchangeLoginCode(ctx context.Context, rawCode string) (*store.User, string, error) {
	u, err := s.store.ConsumeLoginCode(ctx, token.HashOpaque(rawCode))
	if err != nil {
		if errors.Is(err, store.ErrTokenConsumed) {
			return nil, "", ErrInvalidLoginCode
		}
		return nil, "", fmt.Errorf("auth: consuming login code: %w", err)
	}
	session, err := s.tokens.IssueSession(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("auth: issuing session: %w", err)
	}
	return u, session, nil
}
