package resolver

import (
	"context"
	"testing"

	"identity-service/internal/auth"
	"identity-service/internal/auth/authtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func googleProfile() *auth.Profile {
	return &auth.Profile{
		Provider:      "google",
		ExternalID:    "google-123",
		Email:         "Grace@Example.com",
		EmailVerified: true,
		GivenName:     "Grace",
		FamilyName:    "Hopper",
	}
}

func TestResolve_CreatesOnFirstSight(t *testing.T) {
	store := authtest.NewStore()
	r := NewStoreResolver(store)

	u, err := r.Resolve(context.Background(), googleProfile())
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Grace", u.Name)
	assert.Equal(t, "Hopper", u.Surname)
	assert.Equal(t, "grace@example.com", u.Email)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.Equal(t, "google-123", u.ExternalID)
	assert.False(t, u.HasPassword())
	assert.Equal(t, 1, store.Creates)
}

func TestResolve_Idempotent(t *testing.T) {
	store := authtest.NewStore()
	r := NewStoreResolver(store)
	ctx := context.Background()

	first, err := r.Resolve(ctx, googleProfile())
	require.NoError(t, err)
	second, err := r.Resolve(ctx, googleProfile())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.Creates)
}

func TestResolve_DoesNotOverwriteLocalFields(t *testing.T) {
	store := authtest.NewStore()
	existing := store.Put(auth.User{
		Name:       "Amazing Grace",
		Surname:    "H.",
		Email:      "grace@example.com",
		Role:       auth.RoleAdmin,
		ExternalID: "google-123",
	})

	u, err := NewStoreResolver(store).Resolve(context.Background(), googleProfile())
	require.NoError(t, err)

	assert.Equal(t, existing.ID, u.ID)
	assert.Equal(t, "Amazing Grace", u.Name)
	assert.Equal(t, auth.RoleAdmin, u.Role)
	assert.Zero(t, store.Creates)
}

func TestResolve_FallsBackToEmailLocalPart(t *testing.T) {
	store := authtest.NewStore()
	p := googleProfile()
	p.GivenName = ""

	u, err := NewStoreResolver(store).Resolve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "grace", u.Name)
}

func TestResolve_InvalidProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile *auth.Profile
	}{
		{name: "nil", profile: nil},
		{name: "missing external id", profile: &auth.Profile{Email: "a@b.com"}},
		{name: "missing email", profile: &auth.Profile{ExternalID: "x"}},
		{name: "unusable email", profile: &auth.Profile{ExternalID: "x", Email: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := authtest.NewStore()
			_, err := NewStoreResolver(store).Resolve(context.Background(), tt.profile)
			assert.ErrorIs(t, err, auth.ErrInvalidProfile)
			assert.Zero(t, store.Creates)
			assert.Zero(t, store.Lookups)
		})
	}
}

func TestResolve_EmailOwnedByLocalAccount(t *testing.T) {
	store := authtest.NewStore()
	store.Put(auth.User{Name: "Local", Email: "grace@example.com", Role: auth.RoleUser, PasswordHash: "x"})

	_, err := NewStoreResolver(store).Resolve(context.Background(), googleProfile())
	assert.ErrorIs(t, err, auth.ErrConflict)
}
