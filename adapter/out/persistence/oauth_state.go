package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// oauthStateKey is the Redis key prefix for one-shot OAuth states.
const oauthStateKey = "oauth:state:"

// RedisOAuthStateStore holds CSRF states issued on the authorization
// redirect. Each state is single-use and expires with its TTL.
type RedisOAuthStateStore struct {
	client *redis.Client
}

func NewRedisOAuthStateStore(client *redis.Client) *RedisOAuthStateStore {
	return &RedisOAuthStateStore{client: client}
}

// StoreState records a pending state with the given TTL.
func (s *RedisOAuthStateStore) StoreState(ctx context.Context, state string, ttl time.Duration) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	key := oauthStateKey + state
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to store OAuth state: %w", err)
	}
	return nil
}

// ValidateState consumes a pending state. GETDEL makes the check atomic;
// a replayed state fails even when two callbacks race.
func (s *RedisOAuthStateStore) ValidateState(ctx context.Context, state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	key := oauthStateKey + state
	if _, err := s.client.GetDel(ctx, key).Result(); err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("state not found or expired")
		}
		return fmt.Errorf("failed to validate OAuth state: %w", err)
	}
	return nil
}
