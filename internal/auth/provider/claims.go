package provider

import (
	"errors"

	"identity-service/internal/auth"
)

// IDTokenClaims are the standard OIDC claims every provider maps
// into an auth.Profile.
type IDTokenClaims struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	PreferredUsername string `json:"preferred_username"`
}

// Profile converts verified claims into a profile for providerName.
func (c IDTokenClaims) Profile(providerName string) (*auth.Profile, error) {
	if c.Subject == "" || c.Email == "" {
		return nil, errors.New(providerName + " id_token missing required claims")
	}

	return &auth.Profile{
		Provider:      providerName,
		ExternalID:    providerName + "|" + c.Subject,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		GivenName:     c.GivenName,
		FamilyName:    c.FamilyName,
	}, nil
}
