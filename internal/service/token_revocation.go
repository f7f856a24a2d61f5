package service

import (
	"context"
	"fmt"
	"time"

	"github.com/get30seconds/auth-api/pkg/database"
)

// TokenRevocationCache keeps revoked token ids in Redis with the
// token's remaining lifetime as TTL. Entries expire on their own once
// the underlying JWT would no longer validate anyway.
type TokenRevocationCache struct {
	redis *database.Redis
}

var _ RevocationStore = &TokenRevocationCache{}

// NewTokenRevocationCache creates a Redis-backed revocation store
func NewTokenRevocationCache(redis *database.Redis) *TokenRevocationCache {
	return &TokenRevocationCache{redis: redis}
}

// Revoke records a token id as revoked for the given TTL
func (s *TokenRevocationCache) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	key := fmt.Sprintf("revoked:token:%s", tokenID)
	if err := s.redis.Client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token revocation: %w", err)
	}
	return nil
}

// IsRevoked checks whether a token id has been revoked
func (s *TokenRevocationCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	key := fmt.Sprintf("revoked:token:%s", tokenID)
	exists, err := s.redis.Client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists > 0, nil
}
