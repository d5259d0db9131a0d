package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes secrets and compares them against stored digests.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Matches(secret, digest string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt's salted, constant-time comparison.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher clamps cost to bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash hashes a plaintext password with configured cost.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Matches verifies a password against its hashed value.
func (h *BcryptHasher) Matches(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
