package session

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a submitted password with the stored one. With
// plaintext set the stored value is the password itself (legacy mode).
func CheckPassword(stored, submitted string, plaintext bool) bool {
	if plaintext {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(submitted)) == nil
}
