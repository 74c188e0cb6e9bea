package util

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used when no explicit cost is given.
const DefaultHashCost = 10

// HashPassword hashes a plain text password with the default cost
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultHashCost)
}

// HashPasswordCost hashes a plain text password with an explicit bcrypt cost.
// A higher cost makes the hash slower to compute.
func HashPasswordCost(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword checks if a plain text password matches a hashed password.
// A malformed hash verifies as false rather than returning an error.
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
