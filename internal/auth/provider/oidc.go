package provider

import (
	"context"
	"errors"
	"fmt"

	"identity-service/internal/auth"
	"identity-service/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// DefaultScopes are requested from every OIDC provider.
var DefaultScopes = []string{oidc.ScopeOpenID, "email", "profile"}

// OIDCClient implements OAuthProvider for any OpenID Connect issuer.
// Concrete providers only differ in how they discover endpoints.
type OIDCClient struct {
	name        string
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

func NewOIDCClient(name string, cfg *oauth2.Config, verifier *oidc.IDTokenVerifier) *OIDCClient {
	return &OIDCClient{
		name:        name,
		oauthConfig: cfg,
		verifier:    verifier,
	}
}

// Name returns the provider identifier used by the registry.
func (p *OIDCClient) Name() string {
	return p.name
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *OIDCClient) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// ExchangeCode redeems code, verifies the returned id_token and maps its
// claims into a profile. It never creates users or issues tokens.
func (p *OIDCClient) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.Profile, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.VerifierOption(codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("%s token exchange failed: %w", p.name, err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New(p.name + " did not return id_token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%s id_token verification failed: %w", p.name, err)
	}

	var claims IDTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s id_token claims parse failed: %w", p.name, err)
	}

	profile, err := claims.Profile(p.name)
	if err != nil {
		return nil, err
	}

	logger.Debug("oidc id_token verified", map[string]any{
		"provider":           p.name,
		"issuer":             idToken.Issuer,
		"email_verified":     claims.EmailVerified,
		"preferred_username": claims.PreferredUsername,
		"expiry_unix":        idToken.Expiry.Unix(),
	})

	return profile, nil
}

var _ OAuthProvider = (*OIDCClient)(nil)
