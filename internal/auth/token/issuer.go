// Package token mints, verifies and rotates signed access/refresh token pairs.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"identity-service/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config configures token signing and lifetimes.
type Config struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issuer signs token pairs with a single process-wide HMAC secret.
type Issuer struct {
	store  auth.Store
	config Config
	now    func() time.Time
}

// NewIssuer creates an issuer. The access lifetime must be strictly
// shorter than the refresh lifetime.
func NewIssuer(store auth.Store, config Config) (*Issuer, error) {
	if len(config.Secret) == 0 {
		return nil, errors.New("token: signing secret is required")
	}
	if config.AccessTTL <= 0 || config.RefreshTTL <= 0 {
		return nil, errors.New("token: lifetimes must be positive")
	}
	if config.AccessTTL >= config.RefreshTTL {
		return nil, errors.New("token: access ttl must be shorter than refresh ttl")
	}

	return &Issuer{
		store:  store,
		config: config,
		now:    time.Now,
	}, nil
}

// Issue mints a fresh pair for u and stores the refresh token digest in
// the identity's single slot, replacing whatever was there.
func (i *Issuer) Issue(ctx context.Context, u *auth.User) (*auth.TokenPair, error) {
	pair, err := i.mint(u)
	if err != nil {
		return nil, err
	}

	if err := i.store.UpdateRefreshToken(ctx, u.ID, Digest(pair.RefreshToken)); err != nil {
		return nil, fmt.Errorf("token: store refresh token: %w", err)
	}

	return pair, nil
}

// mint signs a pair for u without touching the store.
func (i *Issuer) mint(u *auth.User) (*auth.TokenPair, error) {
	if u == nil || u.ID == "" {
		return nil, errors.New("token: identity is required")
	}

	now := i.now()

	access, err := i.sign(AccessClaims{
		Role:             u.Role,
		Type:             typeAccess,
		RegisteredClaims: i.registered(u.ID, now, i.config.AccessTTL),
	})
	if err != nil {
		return nil, err
	}

	refresh, err := i.sign(RefreshClaims{
		Type:             typeRefresh,
		RegisteredClaims: i.registered(u.ID, now, i.config.RefreshTTL),
	})
	if err != nil {
		return nil, err
	}

	return &auth.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// ParseAccess verifies an access token and returns its claims. Any
// failure matches auth.ErrInvalidToken.
func (i *Issuer) ParseAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.Type != typeAccess {
		return nil, fmt.Errorf("%w: not an access token", auth.ErrInvalidToken)
	}
	return claims, nil
}

func (i *Issuer) parseRefresh(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.Type != typeRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", auth.ErrInvalidToken)
	}
	return claims, nil
}

func (i *Issuer) parse(raw string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(i.config.Issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: expired", auth.ErrInvalidToken)
		}
		return fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return fmt.Errorf("%w: missing subject", auth.ErrInvalidToken)
	}
	return nil
}

func (i *Issuer) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    i.config.Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (i *Issuer) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.config.Secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}
