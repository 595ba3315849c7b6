// Package middleware provides HTTP middleware for request
// authentication.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/zxdhiruu/Restroo/internal/store"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

// UserKey is the context key the authenticated user is stored under.
const UserKey contextKey = "restroo_user"

// TokenExtractor extracts a bearer token from an HTTP request.
type TokenExtractor func(r *http.Request) string

// ErrorHandler writes the response for a failed authentication.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*store.User, error)
}

// Common errors.
var (
	ErrMissingToken = errors.New("authentication required")
	ErrInvalidToken = errors.New("invalid token")
	ErrUserNotFound = errors.New("user not found")
)

// Config holds middleware configuration.
type Config struct {
	// TokenExtractor extracts the token from the request. Defaults to
	// the Authorization header with the Bearer scheme.
	TokenExtractor TokenExtractor

	// ErrorHandler handles authentication errors. Defaults to a JSON
	// 401 response.
	ErrorHandler ErrorHandler

	// SkipPaths are path prefixes that skip authentication.
	SkipPaths []string
}

// DefaultConfig returns a default middleware configuration.
func DefaultConfig() *Config {
	return &Config{
		TokenExtractor: ExtractFromHeader("Authorization", "Bearer"),
		ErrorHandler:   DefaultErrorHandler,
	}
}

// ExtractFromHeader creates a TokenExtractor that reads a header with
// an optional scheme prefix.
func ExtractFromHeader(header, scheme string) TokenExtractor {
	return func(r *http.Request) string {
		auth := r.Header.Get(header)
		if auth == "" {
			return ""
		}
		if scheme != "" {
			prefix := scheme + " "
			if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
				return auth[len(prefix):]
			}
			return ""
		}
		return auth
	}
}

// ExtractFromQuery creates a TokenExtractor that reads a query
// parameter.
func ExtractFromQuery(param string) TokenExtractor {
	return func(r *http.Request) string {
		return r.URL.Query().Get(param)
	}
}

// DefaultErrorHandler writes a JSON 401 with the error's message.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	msg := "Authentication required"
	switch {
	case errors.Is(err, ErrInvalidToken):
		msg = "Invalid token"
	case errors.Is(err, ErrUserNotFound):
		msg = "User not found"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// ShouldSkip reports whether the request path matches a skip prefix.
func ShouldSkip(r *http.Request, skipPaths []string) bool {
	for _, p := range skipPaths {
		if strings.HasPrefix(r.URL.Path, p) {
			return true
		}
	}
	return false
}

// Authenticate creates a middleware that resolves the bearer token to a
// user and stores it in the request context.
func Authenticate(auth Authenticator, cfg *Config) func(http.Handler) http.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.TokenExtractor == nil {
		cfg.TokenExtractor = ExtractFromHeader("Authorization", "Bearer")
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ShouldSkip(r, cfg.SkipPaths) {
				next.ServeHTTP(w, r)
				return
			}

			bearer := cfg.TokenExtractor(r)
			if bearer == "" {
				cfg.ErrorHandler(w, r, ErrMissingToken)
				return
			}

			u, err := auth.Authenticate(r.Context(), bearer)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					cfg.ErrorHandler(w, r, ErrUserNotFound)
				} else {
					cfg.ErrorHandler(w, r, ErrInvalidToken)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(SetUser(r.Context(), u)))
		})
	}
}

// SetUser stores the authenticated user in the context.
func SetUser(ctx context.Context, u *store.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// GetUser retrieves the authenticated user from the context.
func GetUser(ctx context.Context) (*store.User, bool) {
	u, ok := ctx.Value(UserKey).(*store.User)
	return u, ok
}
