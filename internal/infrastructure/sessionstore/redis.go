// Package sessionstore keeps filter session snapshots in Redis.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"yuime-backend/internal/application/filter"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "filter_session:"

// DefaultTTL matches the console login session lifetime.
const DefaultTTL = 24 * time.Hour

// RedisStore saves one JSON-encoded filter.State per (scope, session) key.
// Each save refreshes the TTL.
type RedisStore struct {
	Rdb *redis.Client
	TTL time.Duration
}

func Key(scope, sessionID string) string {
	return keyPrefix + scope + ":" + sessionID
}

// Load returns the saved state; ok is false when none exists or it expired.
func (s *RedisStore) Load(ctx context.Context, scope, sessionID string) (filter.State, bool, error) {
	b, err := s.Rdb.Get(ctx, Key(scope, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return filter.State{}, false, nil
	}
	if err != nil {
		return filter.State{}, false, err
	}
	var st filter.State
	if err := json.Unmarshal(b, &st); err != nil {
		return filter.State{}, false, err
	}
	return st, true, nil
}

func (s *RedisStore) Save(ctx context.Context, scope, sessionID string, st filter.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return s.Rdb.Set(ctx, Key(scope, sessionID), b, ttl).Err()
}

// Delete drops the saved state of one session; a missing key is not an error.
func (s *RedisStore) Delete(ctx context.Context, scope, sessionID string) error {
	return s.Rdb.Del(ctx, Key(scope, sessionID)).Err()
}
