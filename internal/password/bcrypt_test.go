package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	h := NewBcryptHasher(nil)

	hash, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
		t.Errorf("hash should start with $2a$ or $2b$, got: %s", hash)
	}
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	h := NewBcryptHasher(nil)

	hash, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cost != 12 {
		t.Errorf("cost = %d, want 12", cost)
	}
}

func TestBcryptHasher_HashUnique(t *testing.T) {
	h := NewBcryptHasher(&BcryptConfig{Cost: bcrypt.MinCost})

	hash1, _ := h.Hash("password123")
	hash2, _ := h.Hash("password123")

	if hash1 == hash2 {
		t.Error("hashes should be unique due to random salt")
	}
}

func TestBcryptHasher_Verify(t *testing.T) {
	h := NewBcryptHasher(&BcryptConfig{Cost: bcrypt.MinCost})

	hash, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct password", "password123", true},
		{"wrong password", "wrongpassword", false},
		{"empty password", "", false},
		{"similar password", "password124", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Verify(tt.password, hash); got != tt.want {
				t.Errorf("Verify(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestBcryptHasher_VerifyMalformedHash(t *testing.T) {
	h := NewBcryptHasher(nil)

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"invalid format", "not-a-hash"},
		{"too short", "$2a$12$abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if h.Verify("password", tt.hash) {
				t.Error("malformed hash should verify as false")
			}
		})
	}
}

func TestBcryptHasher_NeedsRehash(t *testing.T) {
	h := NewBcryptHasher(&BcryptConfig{Cost: bcrypt.MinCost})
	hash, _ := h.Hash("password123")

	if h.NeedsRehash(hash) {
		t.Error("hash with same cost should not need rehash")
	}

	h2 := NewBcryptHasher(&BcryptConfig{Cost: bcrypt.MinCost + 1})
	if !h2.NeedsRehash(hash) {
		t.Error("hash with different cost should need rehash")
	}

	if !h.NeedsRehash("garbage") {
		t.Error("unparseable hash should need rehash")
	}
}
