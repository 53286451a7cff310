package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"videoinvites/internal/domain"
)

// DefaultBcryptCost is the work factor for stored password hashes.
const DefaultBcryptCost = 12

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a PasswordHasher backed by bcrypt. A cost outside bcrypt's
// accepted range falls back to DefaultBcryptCost.
func NewBcryptHasher(cost int) domain.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare runs bcrypt's constant-time comparison. Any error, including a malformed hash,
// is a mismatch.
func (h *bcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
