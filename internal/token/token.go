// Package token issues and verifies the two token shapes the service
// uses: signed JWT session tokens and random opaque tokens for one-time
// flows (password reset, login codes).
//
// Session tokens are HS256 JWTs carrying the user ID. Opaque tokens are
// 256-bit random values; only their SHA-256 digest is ever persisted,
// so a leaked database cannot be replayed against the API.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultSessionTTL is how long a session token stays valid.
	DefaultSessionTTL = 7 * 24 * time.Hour

	// MinSecretLength is the minimum accepted HMAC secret length in
	// bytes. Anything shorter undermines HS256.
	MinSecretLength = 32

	// opaqueByteLength is the entropy of opaque tokens before encoding.
	opaqueByteLength = 32
)

// SessionClaims is the payload embedded in session JWTs.
type SessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Service issues and verifies tokens. It is safe for concurrent use.
type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string

	// now is swappable in tests to simulate clock travel.
	now func() time.Time
}

// NewService creates a token service. The secret must be at least
// MinSecretLength bytes; a zero ttl falls back to DefaultSessionTTL.
func NewService(secret string, ttl time.Duration) (*Service, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token: secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "restroo",
		now:    time.Now,
	}, nil
}

// IssueSession signs a session token for the given user ID.
func (s *Service) IssueSession(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("token: user ID is required")
	}

	now := s.now()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: signing session token: %w", err)
	}
	return signed, nil
}

// VerifySession validates a session token and returns the user ID it
// was issued for. Every failure mode (bad signature, expired, malformed,
// wrong algorithm) returns ErrInvalidToken so callers cannot be used as
// an oracle for why a token was rejected.
func (s *Service) VerifySession(tokenString string) (string, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// NewOpaque generates a URL-safe random token with 256 bits of entropy.
// The raw value is handed to the user exactly once; persist only its
// HashOpaque digest.
func NewOpaque() (string, error) {
	buf := make([]byte, opaqueByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashOpaque returns the hex-encoded SHA-256 digest of a raw opaque
// token, the only form that is ever stored.
func HashOpaque(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Equal compares two token strings in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
