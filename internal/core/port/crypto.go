package port

import "github.com/bookwise/booking-platform/internal/core/domain"

// TokenVerifier resolves a bearer token string into a request principal.
// Implementations are pure and safe for concurrent use.
type TokenVerifier interface {
	Resolve(token string) (domain.Principal, error)
}

// TokenIssuer signs principal claims into a bearer token with a fixed expiry.
type TokenIssuer interface {
	Issue(principal domain.Principal) (string, error)
}

// PasswordHasher hashes and verifies secrets using the configured algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}

// PasswordPolicyValidator enforces password strength requirements at registration.
type PasswordPolicyValidator interface {
	Validate(password string, userInputs ...string) error
}
