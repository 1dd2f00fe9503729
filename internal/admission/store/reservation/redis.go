// Package reservation holds short-lived in-flight email reservations.
//
// Two concurrent requests for the same email can both pass the profile
// pre-check before either writes a row; a reservation narrows that window.
// It is advisory only: the database unique constraint on profiles.email
// remains the authoritative guard, so a lost or expired reservation is
// harmless.
package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "registrar:provisioning:email:"

// RedisStore reserves emails via SETNX with a TTL, so a crashed request
// releases its reservation automatically.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a redis-backed reservation store.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Reserve attempts to claim the email for the duration of one provisioning
// request. Returns false when another request currently holds it.
func (s *RedisStore) Reserve(ctx context.Context, email string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+email, "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve email: %w", err)
	}
	return ok, nil
}

// Release frees the reservation. Safe to call for an email that was never
// reserved.
func (s *RedisStore) Release(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, keyPrefix+email).Err(); err != nil {
		return fmt.Errorf("release email reservation: %w", err)
	}
	return nil
}
