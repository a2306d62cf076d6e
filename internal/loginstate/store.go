package loginstate

import (
	"context"
	"time"
)

// Pending is an OAuth authorization that was started but whose
// callback has not arrived yet.
type Pending struct {
	State        string    // opaque value echoed back by the provider
	Provider     string    // registry name of the provider
	CodeVerifier string    // PKCE verifier, never sent to the browser
	ExpiresAt    time.Time // absolute expiry time
}

// Store keeps pending authorizations between redirect and callback.
type Store interface {
	Save(ctx context.Context, p Pending) error
	// Take returns and removes the pending authorization for state.
	// Missing or expired entries yield (nil, nil).
	Take(ctx context.Context, state string) (*Pending, error)
}
