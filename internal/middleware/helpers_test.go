package middleware

import (
	"testing"
	"time"

	"identity-service/internal/auth"
	"identity-service/internal/auth/token"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// expiredAccessToken signs a correctly-formed access token whose expiry
// has already passed.
func expiredAccessToken(t *testing.T, u *auth.User) string {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token.AccessClaims{
		Role: u.Role,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    "test",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
	}).SignedString([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return signed
}
