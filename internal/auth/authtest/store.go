// Package authtest provides an in-memory auth.Store for tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"identity-service/internal/auth"

	"github.com/google/uuid"
)

// Store keeps users in memory and counts calls that tests assert on.
type Store struct {
	mu    sync.Mutex
	users map[string]auth.User

	Creates int
	Lookups int
}

func NewStore() *Store {
	return &Store{users: make(map[string]auth.User)}
}

// Put inserts u as-is, bypassing Create's conflict checks and counters.
func (s *Store) Put(u auth.User) *auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = u
	return &u
}

func (s *Store) find(match func(auth.User) bool) *auth.User {
	s.Lookups++
	for _, u := range s.users {
		if match(u) {
			cp := u
			return &cp
		}
	}
	return nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(func(u auth.User) bool { return u.Email == email }), nil
}

func (s *Store) FindByExternalID(_ context.Context, externalID string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(func(u auth.User) bool {
		return u.ExternalID != "" && u.ExternalID == externalID
	}), nil
}

func (s *Store) FindByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lookups++
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) Create(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return auth.ErrConflict
		}
		if u.ExternalID != "" && existing.ExternalID == u.ExternalID {
			return auth.ErrConflict
		}
	}

	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *u
	s.Creates++
	return nil
}

func (s *Store) update(id string, fn func(*auth.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

func (s *Store) UpdateRefreshToken(_ context.Context, id string, value string) error {
	return s.update(id, func(u *auth.User) { u.RefreshToken = value })
}

func (s *Store) SwapRefreshToken(_ context.Context, id string, old string, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || old == "" || u.RefreshToken != old {
		return false, nil
	}
	u.RefreshToken = next
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return true, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, id string, hash string) error {
	return s.update(id, func(u *auth.User) { u.PasswordHash = hash })
}

func (s *Store) UpdateRole(_ context.Context, id string, role auth.Role) error {
	return s.update(id, func(u *auth.User) { u.Role = role })
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

var _ auth.Store = (*Store)(nil)
