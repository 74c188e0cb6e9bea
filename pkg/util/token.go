package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Token purposes. A token is only redeemable by an operation expecting the
// purpose it was minted with; checking the purpose is the caller's job.
const (
	PurposeLogin    = "login"
	PurposeRegister = "register"
)

// Claims carries the token subject and the purpose it was minted for
type Claims struct {
	UserID  uint   `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed HS256 token for the given subject and purpose,
// expiring after ttl.
func GenerateToken(userID uint, purpose, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies the signature and expiry of a token and returns its
// claims. Expired tokens return ErrExpiredToken, everything else ErrInvalidToken.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
