package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard implements ports.ReplayGuard with SETNX, sharing replay
// state across server instances. Entries expire with the challenge TTL
// since an expired challenge cannot be replayed anyway.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard creates a replay guard on an existing Redis client.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

// TryConsume marks the challenge as spent. The JWT is hashed into the
// key so Redis stores 32 bytes instead of the full token.
func (g *RedisGuard) TryConsume(ctx context.Context, challenge string) (bool, error) {
	sum := sha256.Sum256([]byte(challenge))
	key := "pow:challenge:" + hex.EncodeToString(sum[:])

	ok, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark challenge: %w", err)
	}
	return ok, nil
}
