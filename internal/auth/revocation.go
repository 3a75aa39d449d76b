package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// auth:revoked:{tokenID} - present while the token is signed out
const keyRevokedToken = "auth:revoked:%s"

// revocation list kept in Redis so every server instance sees sign-outs
type RedisRevoker struct {
	client *redis.Client
}

// creates a Redis-backed revoker
func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, fmt.Sprintf(keyRevokedToken, tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, fmt.Sprintf(keyRevokedToken, tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return true, nil
}

// single-instance revocation list
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// creates an in-memory revoker
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time)}
}

func (r *MemoryRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, exp := range r.revoked {
		if now.After(exp) {
			delete(r.revoked, id)
		}
	}

	if until.After(now) {
		r.revoked[tokenID] = until
	}

	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exp, ok := r.revoked[tokenID]
	return ok && time.Now().Before(exp), nil
}
