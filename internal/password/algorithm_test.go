package password

import "testing"

func TestForAlgorithm_Unknown(t *testing.T) {
	if _, err := ForAlgorithm("scrypt"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestForAlgorithm_CrossVerify(t *testing.T) {
	bcryptHash, err := NewBcryptHasher(&BcryptConfig{Cost: 4}).Hash("password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	argonHash, err := NewArgon2Hasher(nil).Hash("password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		algorithm string
		legacy    string
	}{
		{"bcrypt primary verifies argon2", "bcrypt", argonHash},
		{"argon2 primary verifies bcrypt", "argon2", bcryptHash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ForAlgorithm(tt.algorithm)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !h.Verify("password123", tt.legacy) {
				t.Error("legacy hash should still verify")
			}
			if h.Verify("wrongpassword", tt.legacy) {
				t.Error("wrong password must not verify")
			}
			// A legacy hash is flagged so login rehashes it with the
			// selected algorithm.
			if !h.NeedsRehash(tt.legacy) {
				t.Error("legacy hash should need a rehash")
			}
		})
	}
}

func TestForAlgorithm_RoundTrip(t *testing.T) {
	for _, algorithm := range []string{"bcrypt", "argon2"} {
		h, err := ForAlgorithm(algorithm)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		hash, err := h.Hash("password123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !h.Verify("password123", hash) {
			t.Errorf("%s: own hash should verify", algorithm)
		}
		if h.NeedsRehash(hash) {
			t.Errorf("%s: fresh hash should not need a rehash", algorithm)
		}
	}
}
