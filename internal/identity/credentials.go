package identity

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCredential derives the stored form of a password.
func HashCredential(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return string(hash), nil
}

// CheckCredential reports whether password matches the stored hash.
func CheckCredential(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
