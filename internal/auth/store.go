package auth

import "context"

// Store is the narrow persistence contract the core consumes.
// Every method touches a single record. Lookups return (nil, nil)
// when nothing matches; Create returns ErrConflict on a duplicate
// email or external id.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)

	// Create assigns ID and timestamps on u before persisting it.
	Create(ctx context.Context, u *User) error

	UpdateRefreshToken(ctx context.Context, id string, value string) error
	// SwapRefreshToken sets the slot to next only if it still holds old
	// and reports whether it did.
	SwapRefreshToken(ctx context.Context, id string, old string, next string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id string, hash string) error
	UpdateRole(ctx context.Context, id string, role Role) error
	Delete(ctx context.Context, id string) error
}

// TokenPair is a freshly minted access/refresh token couple.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
