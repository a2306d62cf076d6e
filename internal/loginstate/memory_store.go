package loginstate

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps pending authorizations in process memory. It is
// used when no Redis address is configured (single instance, dev).
type MemoryStore struct {
	mu      sync.Mutex
	pending map[string]Pending
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pending: make(map[string]Pending),
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, p Pending) error {
	if p.State == "" || p.CodeVerifier == "" {
		return fmt.Errorf("loginstate: missing state or code verifier")
	}
	if !p.ExpiresAt.After(m.now()) {
		return fmt.Errorf("loginstate: expires_at must be in the future")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// drop expired entries so abandoned logins do not accumulate
	for k, v := range m.pending {
		if m.now().After(v.ExpiresAt) {
			delete(m.pending, k)
		}
	}
	m.pending[p.State] = p
	return nil
}

func (m *MemoryStore) Take(_ context.Context, state string) (*Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[state]
	if !ok {
		return nil, nil
	}
	delete(m.pending, state)

	if m.now().After(p.ExpiresAt) {
		return nil, nil
	}
	return &p, nil
}

var _ Store = (*MemoryStore)(nil)
