package token

import (
	"context"
	"strings"
	"testing"
	"time"

	"identity-service/internal/auth"
	"identity-service/internal/auth/authtest"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testConfig() Config {
	return Config{
		Secret:     testSecret,
		Issuer:     "identity-service-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
}

func testIssuer(t *testing.T, store auth.Store) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(store, testConfig())
	require.NoError(t, err)
	return issuer
}

func seedUser(store *authtest.Store, role auth.Role) *auth.User {
	return store.Put(auth.User{
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  role,
	})
}

func TestNewIssuer_Config(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing secret", mutate: func(c *Config) { c.Secret = nil }},
		{name: "zero access ttl", mutate: func(c *Config) { c.AccessTTL = 0 }},
		{name: "access equals refresh", mutate: func(c *Config) { c.AccessTTL = c.RefreshTTL }},
		{name: "access longer than refresh", mutate: func(c *Config) { c.AccessTTL = 2 * c.RefreshTTL }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := NewIssuer(authtest.NewStore(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestIssue(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleAdmin)
	issuer := testIssuer(t, store)

	pair, err := issuer.Issue(context.Background(), u)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "identity-service-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	refresh, err := issuer.parseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, refresh.Subject)
	assert.True(t, refresh.ExpiresAt.After(claims.ExpiresAt.Time))

	stored, err := store.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, Digest(pair.RefreshToken), stored.RefreshToken)
	assert.NotContains(t, stored.RefreshToken, ".")
}

func TestIssue_OverwritesSlot(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleUser)
	issuer := testIssuer(t, store)
	ctx := context.Background()

	first, err := issuer.Issue(ctx, u)
	require.NoError(t, err)
	second, err := issuer.Issue(ctx, u)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, Digest(second.RefreshToken), stored.RefreshToken)
}

func TestParseAccess_Rejects(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleUser)
	issuer := testIssuer(t, store)
	pair, err := issuer.Issue(context.Background(), u)
	require.NoError(t, err)

	other, err := NewIssuer(store, Config{
		Secret:     []byte("another-secret-another-secret-xx"),
		Issuer:     "identity-service-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	require.NoError(t, err)
	foreign, err := other.Issue(context.Background(), u)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
		Role: auth.RoleAdmin,
		Type: typeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    "identity-service-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "refresh token used as access", token: pair.RefreshToken},
		{name: "foreign signature", token: foreign.AccessToken},
		{name: "unsigned", token: none},
		{name: "tampered", token: strings.TrimSuffix(pair.AccessToken, pair.AccessToken[len(pair.AccessToken)-2:]) + "xx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.ParseAccess(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestParseAccess_Expired(t *testing.T) {
	store := authtest.NewStore()
	u := seedUser(store, auth.RoleUser)
	issuer := testIssuer(t, store)

	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := issuer.Issue(context.Background(), u)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.Contains(t, err.Error(), "expired")
}

func TestDigest(t *testing.T) {
	assert.Equal(t, Digest("abc"), Digest("abc"))
	assert.NotEqual(t, Digest("abc"), Digest("abd"))
	assert.Len(t, Digest("abc"), 64)
}
