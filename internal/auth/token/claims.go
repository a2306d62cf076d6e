package token

import (
	"crypto/sha256"
	"encoding/hex"

	"identity-service/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	Role auth.Role `json:"role"`
	Type string    `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token.
type RefreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Digest returns the hex SHA-256 of a raw token. Only digests are
// written to the refresh slot.
func Digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
