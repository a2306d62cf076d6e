package token

import (
	"context"
	"crypto/subtle"
	"fmt"

	"identity-service/internal/auth"
)

var errRotated = fmt.Errorf("%w: refresh token was rotated or revoked", auth.ErrInvalidToken)

// Refresher rotates refresh tokens. Each successful call consumes the
// presented token and leaves exactly one new valid pair.
type Refresher struct {
	issuer *Issuer
	store  auth.Store
}

func NewRefresher(issuer *Issuer, store auth.Store) *Refresher {
	return &Refresher{issuer: issuer, store: store}
}

// Refresh validates raw against its signature, expiry, owner and the
// owner's current slot, then issues a replacement pair. A token that was
// already rotated away no longer matches the slot and is rejected. The
// slot is swapped conditionally, so of two concurrent refreshes of the
// same token exactly one succeeds.
func (r *Refresher) Refresh(ctx context.Context, raw string) (*auth.TokenPair, error) {
	claims, err := r.issuer.parseRefresh(raw)
	if err != nil {
		return nil, err
	}

	u, err := r.store.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("token: lookup subject: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: unknown subject", auth.ErrInvalidToken)
	}

	digest := Digest(raw)
	if u.RefreshToken == "" ||
		subtle.ConstantTimeCompare([]byte(u.RefreshToken), []byte(digest)) != 1 {
		return nil, errRotated
	}

	pair, err := r.issuer.mint(u)
	if err != nil {
		return nil, err
	}

	swapped, err := r.store.SwapRefreshToken(ctx, u.ID, digest, Digest(pair.RefreshToken))
	if err != nil {
		return nil, fmt.Errorf("token: store refresh token: %w", err)
	}
	if !swapped {
		return nil, errRotated
	}

	return pair, nil
}

// Revoke clears the refresh slot of userID so no refresh token is valid.
func (r *Refresher) Revoke(ctx context.Context, userID string) error {
	if err := r.store.UpdateRefreshToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("token: revoke: %w", err)
	}
	return nil
}
