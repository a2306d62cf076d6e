package resolver

import (
	"context"

	"identity-service/internal/auth"
)

// Resolver determines which local identity an external profile belongs to.
// It is the ONLY place where profile-to-identity mapping logic lives.
// It never verifies passwords and never issues tokens.
type Resolver interface {
	Resolve(
		ctx context.Context,
		profile *auth.Profile,
	) (*auth.User, error)
}
