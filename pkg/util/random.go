package util

import (
	"crypto/rand"
	"encoding/hex"
)

// resetSecretLength is the byte length of a password-reset secret
const resetSecretLength = 32

// GenerateResetSecret creates a cryptographically secure random secret for
// password-reset links. The raw value goes to the user; only its hash is stored.
func GenerateResetSecret() (string, error) {
	bytes := make([]byte, resetSecretLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
