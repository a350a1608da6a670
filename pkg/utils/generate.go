package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// ==================== ACCOUNT TOKENS ====================

// GenerateAccountToken returns the hex SHA-256 of a random salt, a fresh UUID
// and the username. Used for email verification and password reset.
func GenerateAccountToken(username string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate token salt: %w", err)
	}

	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(uuid.NewString()))
	h.Write([]byte(username))

	return hex.EncodeToString(h.Sum(nil)), nil
}

// GenerateRandomString returns n random bytes, URL-safe base64 encoded.
func GenerateRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
