package ports

import "time"

// Token type discriminators carried in the JWT "type" claim. A token of one
// type is never accepted where the other is expected.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs and validates JWTs (HS256, shared secret).
type TokenIssuer interface {
	Issue(subject, tokenType string, ttl time.Duration) (string, error)
	// Validate checks signature and expiry, then the type claim against
	// expectedType. Decode failures map to ErrInvalidToken; a structurally
	// valid token of the wrong type maps to ErrWrongTokenType.
	Validate(token, expectedType string) (subject string, err error)
}
