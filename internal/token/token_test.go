package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestNewService_SecretLength(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"empty secret", "", true},
		{"short secret", "too-short", true},
		{"31 bytes", strings.Repeat("a", 31), true},
		{"32 bytes", strings.Repeat("a", 32), false},
		{"long secret", strings.Repeat("a", 64), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.secret, time.Hour)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewService() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_SessionRoundtrip(t *testing.T) {
	s := newTestService(t)

	signed, err := s.IssueSession("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(signed, ".") != 2 {
		t.Errorf("expected a three-part JWT, got: %s", signed)
	}

	userID, err := s.VerifySession(signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want %q", userID, "user-123")
	}
}

func TestService_IssueSessionEmptyUserID(t *testing.T) {
	s := newTestService(t)
	if _, err := s.IssueSession(""); err == nil {
		t.Error("expected error for empty user ID")
	}
}

func TestService_VerifyExpired(t *testing.T) {
	s := newTestService(t)

	signed, err := s.IssueSession("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Move the clock past the TTL.
	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = s.VerifySession(signed)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestService_VerifyWrongSecret(t *testing.T) {
	s := newTestService(t)
	signed, err := s.IssueSession("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other, err := NewService(strings.Repeat("x", 32), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.VerifySession(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestService_VerifyTampered(t *testing.T) {
	s := newTestService(t)
	signed, err := s.IssueSession("user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Flipping any single character must invalidate the token, and the
	// failure must be indistinguishable from every other failure.
	for i := 0; i < len(signed); i++ {
		b := []byte(signed)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		tampered := string(b)
		if tampered == signed {
			continue
		}
		if _, err := s.VerifySession(tampered); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("tampering at position %d: got %v, want ErrInvalidToken", i, err)
		}
	}
}

func TestService_VerifyMalformed(t *testing.T) {
	s := newTestService(t)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d", "....."} {
		if _, err := s.VerifySession(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifySession(%q): got %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestNewOpaque_Uniqueness(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		tok, err := NewOpaque()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate opaque token after %d draws", i)
		}
		seen[tok] = true
	}
}

func TestNewOpaque_Shape(t *testing.T) {
	tok, err := NewOpaque()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 32 bytes is 43 characters of unpadded base64url.
	if len(tok) != 43 {
		t.Errorf("token length = %d, want 43", len(tok))
	}
	if strings.ContainsAny(tok, "+/=") {
		t.Errorf("token is not URL-safe: %s", tok)
	}
}

func TestHashOpaque(t *testing.T) {
	a := HashOpaque("some-token")
	b := HashOpaque("some-token")
	c := HashOpaque("other-token")

	if a != b {
		t.Error("HashOpaque should be deterministic")
	}
	if a == c {
		t.Error("distinct tokens should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex characters", len(a))
	}
	if a == "some-token" {
		t.Error("digest must not be the raw token")
	}
}

func TestEqual(t *testing.T) {
	if !Equal("abc", "abc") {
		t.Error("Equal should match identical strings")
	}
	if Equal("abc", "abd") || Equal("abc", "abcd") {
		t.Error("Equal should reject differing strings")
	}
}
