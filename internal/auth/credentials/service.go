package credentials

import (
	"context"
	"errors"
	"fmt"

	"identity-service/internal/auth"
)

type Service struct {
	store auth.Store
}

func NewService(store auth.Store) *Service {
	return &Service{store: store}
}

// Register validates a local sign-up, hashes its password and creates
// the identity. It returns the created record with the hash stripped.
func (s *Service) Register(ctx context.Context, r Registration) (*auth.User, error) {
	u := r.user()
	if err := u.Validate(); err != nil {
		return nil, err
	}

	// 1. Reject duplicates before paying for a hash
	existing, err := s.store.FindByEmail(ctx, u.Email)
	if err != nil {
		return nil, fmt.Errorf("credentials: lookup email: %w", err)
	}
	if existing != nil {
		return nil, auth.ErrConflict
	}

	// 2. Hash password
	if err := SetPassword(u, r.Password); err != nil {
		return nil, err
	}

	// 3. Persist
	if err := s.store.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("credentials: create user: %w", err)
	}

	return u.Public(), nil
}

// CheckCredentials returns the identity owning email when password matches.
// Unknown users, pure-OAuth accounts and wrong passwords are reported the
// same way so callers cannot tell them apart.
func (s *Service) CheckCredentials(ctx context.Context, email string, password string) (*auth.User, error) {
	// 1. Find user
	u, err := s.store.FindByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("credentials: lookup email: %w", err)
	}

	// hide whether user exists or not
	if u == nil || !u.HasPassword() {
		return nil, auth.ErrInvalidCredentials
	}

	// 2. Verify password
	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return u, nil
}

// ChangePassword re-hashes the password of userID. The current password
// is required unless the account has none yet (first password on an
// OAuth-only account). The refresh slot is cleared so existing sessions
// must log in again.
func (s *Service) ChangePassword(ctx context.Context, userID string, current string, next string) error {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("credentials: lookup id: %w", err)
	}
	if u == nil {
		return auth.ErrIdentityNotFound
	}

	if u.HasPassword() {
		if err := VerifyPassword(u.PasswordHash, current); err != nil {
			return auth.ErrInvalidCredentials
		}
	}

	if err := SetPassword(u, next); err != nil {
		return err
	}

	if err := s.store.UpdatePasswordHash(ctx, u.ID, u.PasswordHash); err != nil {
		return fmt.Errorf("credentials: update password: %w", err)
	}
	if err := s.store.UpdateRefreshToken(ctx, u.ID, ""); err != nil {
		return fmt.Errorf("credentials: clear refresh token: %w", err)
	}

	return nil
}

// SetPassword hashes plaintext into u.PasswordHash. It is the single
// place where a newly set password becomes a digest.
func SetPassword(u *auth.User, plaintext string) error {
	hash, err := HashPassword(plaintext)
	if err != nil {
		if errors.Is(err, auth.ErrValidation) {
			return err
		}
		return fmt.Errorf("credentials: hash password: %w", err)
	}
	u.PasswordHash = hash
	return nil
}
