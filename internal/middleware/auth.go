package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"identity-service/internal/auth"
	"identity-service/internal/auth/token"
)

// unexported, collision-proof context key
type userContextKeyType struct{}

var userKey = userContextKeyType{}

// UserFromContext extracts the authenticated identity from context.
func UserFromContext(ctx context.Context) (*auth.User, bool) {
	u, ok := ctx.Value(userKey).(*auth.User)
	return u, ok && u != nil
}

// WithUser attaches an authenticated identity to ctx.
func WithUser(ctx context.Context, u *auth.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// AccessTokenParser verifies access tokens.
type AccessTokenParser interface {
	ParseAccess(raw string) (*token.AccessClaims, error)
}

// AuthMiddleware validates bearer access tokens and enforces role gates.
type AuthMiddleware struct {
	Tokens AccessTokenParser
	Store  auth.Store
}

func NewAuthMiddleware(tokens AccessTokenParser, store auth.Store) *AuthMiddleware {
	return &AuthMiddleware{Tokens: tokens, Store: store}
}

// Authorize resolves the identity behind raw. When required is set the
// identity's current stored role must equal it. The role claim inside
// the token is never trusted on its own because roles can change after
// issuance.
func (a *AuthMiddleware) Authorize(ctx context.Context, raw string, required auth.Role) (*auth.User, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: missing bearer token", auth.ErrUnauthenticated)
	}

	claims, err := a.Tokens.ParseAccess(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrUnauthenticated, err)
	}

	u, err := a.Store.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("middleware: lookup identity: %w", err)
	}
	if u == nil {
		return nil, auth.ErrIdentityNotFound
	}

	if required != "" && u.Role != required {
		return nil, auth.ErrForbidden
	}

	return u.Public(), nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequireAuth returns middleware that admits requests carrying a valid
// access token and, if required is non-empty, holding that role.
func (a *AuthMiddleware) RequireAuth(required auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Validate token and load identity
			u, err := a.Authorize(r.Context(), BearerToken(r), required)
			if err != nil {
				status, msg := Status(err)
				if status == http.StatusUnauthorized {
					w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				}
				http.Error(w, msg, status)
				return
			}

			// 2. Attach identity to context
			ctx := WithUser(r.Context(), u)

			// 3. Continue request
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Status maps an authorization failure to an HTTP status and a message
// that is safe to show clients.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrIdentityNotFound),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
