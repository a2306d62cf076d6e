package keycloak

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"identity-service/internal/auth/provider"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const providerName = "keycloak"

// New initializes a Keycloak OIDC client using discovery.
// issuer must be the realm issuer URL, e.g.
// http://keycloak:8080/realms/identity. publicBaseURL is the
// browser-reachable Keycloak origin; it replaces the issuer origin
// in the authorization URL when Keycloak is reached through a
// different host on the back channel.
func New(
	ctx context.Context,
	issuer string,
	clientID string,
	redirectURL string,
	publicBaseURL string,
) (*provider.OIDCClient, error) {

	if issuer == "" || clientID == "" || redirectURL == "" {
		return nil, errors.New("keycloak oauth config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init keycloak oidc provider: %w", err)
	}

	ep := oidcProvider.Endpoint()
	if publicBaseURL != "" {
		ep.AuthURL, err = rebase(ep.AuthURL, publicBaseURL)
		if err != nil {
			return nil, err
		}
	}

	// public client: PKCE replaces the secret
	oauthCfg := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURL,
		Endpoint:    ep,
		Scopes:      provider.DefaultScopes,
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	return provider.NewOIDCClient(providerName, oauthCfg, verifier), nil
}

// rebase swaps the scheme and host of endpoint for those of base.
func rebase(endpoint string, base string) (string, error) {
	e, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("keycloak auth url: %w", err)
	}
	b, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil || b.Host == "" {
		return "", fmt.Errorf("keycloak public base url %q is invalid", base)
	}
	e.Scheme = b.Scheme
	e.Host = b.Host
	return e.String(), nil
}
