// Package auth holds the credential primitives: password hashing and the
// signed bearer-token lifecycle.
package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the work factor applied to new password hashes.
const DefaultBcryptCost = 12

// PasswordHasher wraps bcrypt with a fixed cost factor. It holds no mutable
// state and is safe for concurrent use.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash generates a salted one-way hash of the plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext password matches the stored hash.
// A mismatch is an expected outcome, not an error.
func (h *PasswordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
