// Package idempotency records client-supplied idempotency keys so that a
// repeated checkout submission is rejected before it touches the database.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long a key is remembered.
const DefaultTTL = 24 * time.Hour

// Guard claims idempotency keys.
type Guard interface {
	// Claim records key for scope. It reports false when the key was
	// already claimed within the TTL.
	Claim(ctx context.Context, scope, key string) (bool, error)

	// Release forgets a claimed key so the client may retry.
	Release(ctx context.Context, scope, key string) error
}

type redisGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisGuard creates a Guard backed by Redis SETNX.
func NewRedisGuard(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisGuard{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "idempotency").Logger(),
	}
}

func redisKey(scope, key string) string {
	return fmt.Sprintf("idempotent-key:%s:%s", scope, key)
}

func (g *redisGuard) Claim(ctx context.Context, scope, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, redisKey(scope, key), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		g.logger.Error().Err(err).Str("scope", scope).Msg("failed to claim idempotency key")
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if !ok {
		g.logger.Warn().Str("scope", scope).Str("key", key).Msg("duplicate idempotency key")
	}
	return ok, nil
}

func (g *redisGuard) Release(ctx context.Context, scope, key string) error {
	if err := g.client.Del(ctx, redisKey(scope, key)).Err(); err != nil {
		g.logger.Error().Err(err).Str("scope", scope).Msg("failed to release idempotency key")
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

type nopGuard struct{}

// NewNopGuard returns a Guard that accepts every key.
func NewNopGuard() Guard {
	return nopGuard{}
}

func (nopGuard) Claim(context.Context, string, string) (bool, error) { return true, nil }
func (nopGuard) Release(context.Context, string, string) error       { return nil }
