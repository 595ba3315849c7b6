package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for every login failure:
	// unknown email, wrong password, or a Google-only account with no
	// password set. Callers must not get a hint which one it was.
	ErrInvalidCredentials = errors.New("auth: invalid email or password")

	// ErrEmailTaken is returned when signing up with an email that is
	// already registered.
	ErrEmailTaken = errors.New("auth: email already registered")

	// ErrWeakPassword is returned when a password fails policy.
	ErrWeakPassword = errors.New("auth: password must be at least 8 characters")

	// ErrInvalidEmail is returned when an email address does not parse.
	ErrInvalidEmail = errors.New("auth: invalid email address")

	// ErrMissingName is returned when a signup omits the first or last
	// name.
	ErrMissingName = errors.New("auth: first and last name are required")

	// ErrInvalidResetToken is returned when a password-reset token is
	// unknown, expired, or already used.
	ErrInvalidResetToken = errors.New("auth: invalid or expired reset token")

	// ErrInvalidLoginCode is returned when a one-time login code is
	// unknown, expired, or already used.
	ErrInvalidLoginCode = errors.New("auth: invalid or expired login code")

	// ErrProviderExchange is returned when the OAuth provider rejects
	// a code exchange or the userinfo fetch fails.
	ErrProviderExchange = errors.New("auth: provider exchange failed")
)
