package utils

import "golang.org/x/crypto/bcrypt"

// MinPasswordLength is the shortest password accepted on password change.
const MinPasswordLength = 6

// MaxPasswordLength is bcrypt's input limit in bytes.  Longer passwords are
// rejected by GenerateFromPassword.
const MaxPasswordLength = 72

// HashPassword returns a bcrypt hash of plain using the given cost.  Costs
// outside bcrypt's range fall back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash with a plain password.  An empty or
// malformed hash never verifies.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
