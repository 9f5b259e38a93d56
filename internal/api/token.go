package api

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const resetTokenBytes = 32

// newResetToken returns a url-safe random token for password resets.
func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
