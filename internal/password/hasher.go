// Package password provides password hashing and verification.
package password

// Hasher defines the interface for password hashing algorithms.
type Hasher interface {
	// Hash creates a hash from a password. The output is self-describing:
	// it embeds the salt and cost parameters, so Verify needs no side
	// channel.
	Hash(password string) (string, error)

	// Verify reports whether a password matches a hash. A malformed or
	// unrecognized hash verifies as false; it is never an error.
	Verify(password, hash string) bool

	// NeedsRehash reports whether a hash was created with parameters other
	// than the hasher's current ones.
	NeedsRehash(hash string) bool
}
