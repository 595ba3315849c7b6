package password

import "fmt"

// migratingHasher hashes with the selected algorithm while still
// verifying hashes produced by the other one. NeedsRehash reports any
// non-primary hash, so the login upgrade path converts stored hashes
// the next time the password is seen.
type migratingHasher struct {
	primary Hasher
	legacy  Hasher
}

var _ Hasher = (*migratingHasher)(nil)

func (m *migratingHasher) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *migratingHasher) Verify(password, hash string) bool {
	if m.primary.Verify(password, hash) {
		return true
	}
	return m.legacy.Verify(password, hash)
}

func (m *migratingHasher) NeedsRehash(hash string) bool {
	return m.primary.NeedsRehash(hash)
}

// ForAlgorithm returns the hasher for the named algorithm, "bcrypt" or
// "argon2", with default parameters. Hashes from the other algorithm
// keep verifying so deployments can switch without locking anyone out.
func ForAlgorithm(name string) (Hasher, error) {
	switch name {
	case "bcrypt":
		return &migratingHasher{
			primary: NewBcryptHasher(nil),
			legacy:  NewArgon2Hasher(nil),
		}, nil
	case "argon2":
		return &migratingHasher{
			primary: NewArgon2Hasher(nil),
			legacy:  NewBcryptHasher(nil),
		}, nil
	default:
		return nil, fmt.Errorf("password: unknown algorithm %q", name)
	}
}
