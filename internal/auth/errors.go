package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the credential, token, federation and
// authorization components. Callers match them with errors.Is.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrUnauthenticated    = errors.New("auth: unauthenticated")
	ErrIdentityNotFound   = errors.New("auth: identity not found")
	ErrForbidden          = errors.New("auth: forbidden")
	ErrInvalidProfile     = errors.New("auth: invalid provider profile")
	ErrValidation         = errors.New("auth: validation failure")
	ErrConflict           = errors.New("auth: identity already exists")
)

// ValidationError describes a malformed identity field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("auth: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
