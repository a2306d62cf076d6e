package resolver

import (
	"context"
	"fmt"
	"strings"

	"identity-service/internal/auth"
	"identity-service/internal/logger"
)

// StoreResolver resolves profiles through an auth.Store.
type StoreResolver struct {
	store auth.Store
}

func NewStoreResolver(store auth.Store) *StoreResolver {
	return &StoreResolver{store: store}
}

// Resolve returns the identity linked to profile.ExternalID, creating it
// on first sight. Existing identities are returned unchanged so that
// locally edited fields are never overwritten by the provider.
func (r *StoreResolver) Resolve(
	ctx context.Context,
	profile *auth.Profile,
) (*auth.User, error) {

	if err := checkProfile(profile); err != nil {
		return nil, err
	}

	// 1. Try identity lookup (external id)
	u, err := r.store.FindByExternalID(ctx, profile.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("resolver: lookup external id: %w", err)
	}
	if u != nil {
		return u, nil
	}

	// 2. Create new user
	u = newUser(profile)
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidProfile, err)
	}

	if err := r.store.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("resolver: create user: %w", err)
	}

	logger.Info("federated identity created", map[string]any{
		"provider": profile.Provider,
		"user_id":  u.ID,
	})

	return u, nil
}

func checkProfile(profile *auth.Profile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is nil", auth.ErrInvalidProfile)
	}
	if strings.TrimSpace(profile.ExternalID) == "" {
		return fmt.Errorf("%w: missing external id", auth.ErrInvalidProfile)
	}
	email := auth.NormalizeEmail(profile.Email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: missing usable email", auth.ErrInvalidProfile)
	}
	return nil
}

func newUser(profile *auth.Profile) *auth.User {
	email := auth.NormalizeEmail(profile.Email)

	name := strings.TrimSpace(profile.GivenName)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	return &auth.User{
		Name:       name,
		Surname:    strings.TrimSpace(profile.FamilyName),
		Email:      email,
		Role:       auth.RoleUser,
		ExternalID: profile.ExternalID,
	}
}

var _ Resolver = (*StoreResolver)(nil)
