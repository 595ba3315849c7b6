package token

import "errors"

// ErrInvalidToken is returned for every session verification failure.
// The cause (expiry, signature, malformed input) is deliberately not
// distinguished.
var ErrInvalidToken = errors.New("token: invalid token")
