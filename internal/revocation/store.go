// Package revocation checks tokens against the shared session allow-list.
//
// The auth service writes a "token:<raw>" key to Redis at login and deletes it
// at logout, so presence of the key means the session is still live. The
// gateway only ever reads.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/contestapp/gateway/internal/logging"
)

const keyPrefix = "token:"

// Store reports whether a token is still present in the session store.
type Store interface {
	Exists(ctx context.Context, token string) bool
}

// RedisStore is the Redis-backed Store used in production.
type RedisStore struct {
	client *redis.Client
	log    *logging.Logger
}

// NewRedisStore connects to Redis at redisURL and verifies the connection
// with a ping.
func NewRedisStore(redisURL string, log *logging.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStore{client: client, log: log}, nil
}

// NewRedisStoreFromClient wraps an existing Redis connection. Used by tests.
func NewRedisStoreFromClient(client *redis.Client, log *logging.Logger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

// Exists returns true if the token is still present in the session store.
// Store errors are logged and reported as absent, so a broken store rejects
// requests rather than letting revoked sessions through.
func (s *RedisStore) Exists(ctx context.Context, token string) bool {
	n, err := s.client.Exists(ctx, keyPrefix+token).Result()
	if err != nil {
		s.log.ErrorContext(ctx, "revocation store lookup failed", logging.Error(err))
		return false
	}
	return n > 0
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
