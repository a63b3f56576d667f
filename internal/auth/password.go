// Package auth provides the credential primitives of the service:
// bcrypt password hashing and signed bearer token issuance/verification.
package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the cost used when configuration supplies none.
const DefaultBcryptCost = 10

// HashPassword returns a bcrypt hash of plain using the given cost. bcrypt
// generates a fresh salt per call, so hashing the same password twice
// yields different values; equality checks must go through VerifyPassword.
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// A wrong password is not an error, just false.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
