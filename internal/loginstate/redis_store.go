package loginstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed login-state store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "oauth_state:",
	}
}

func (r *RedisStore) key(state string) string {
	return r.prefix + state
}

func (r *RedisStore) Save(ctx context.Context, p Pending) error {
	if p.State == "" || p.CodeVerifier == "" {
		return fmt.Errorf("loginstate: missing state or code verifier")
	}

	ttl := time.Until(p.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("loginstate: expires_at must be in the future")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("loginstate: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(p.State), data, ttl).Err()
}

// Take uses GETDEL so a state value can be redeemed only once.
func (r *RedisStore) Take(ctx context.Context, state string) (*Pending, error) {
	val, err := r.client.GetDel(ctx, r.key(state)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var p Pending
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("loginstate: failed to unmarshal: %w", err)
	}

	if time.Now().After(p.ExpiresAt) {
		return nil, nil
	}

	return &p, nil
}

var _ Store = (*RedisStore)(nil)
