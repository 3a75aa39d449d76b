package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/mediagate/limits"
	"github.com/redis/go-redis/v9"
)

// usage:count:{userID}:{feature} - cached row count
const keyUsageCount = "usage:count:%s:%s"

// usage:version:{userID}:{feature} - bumped on every insert
const keyUsageVersion = "usage:version:%s:%s"

// default lifetime of a cached count
const DefaultCountTTL = 30 * time.Second

const versionTTL = time.Hour

// caches counts in Redis in front of another store. Inserts bump a per-key
// version and drop the cached count; a refill only commits while the version
// it watched is unchanged, so a count read before an insert is never cached
// after it.
type CachedStore struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
}

// wraps inner with a Redis count cache
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCountTTL
	}

	return &CachedStore{inner: inner, client: client, ttl: ttl}
}

func (s *CachedStore) Insert(ctx context.Context, entry *Entry) error {
	if err := s.inner.Insert(ctx, entry); err != nil {
		return err
	}

	countKey := fmt.Sprintf(keyUsageCount, entry.UserID, entry.FeatureType)
	versionKey := fmt.Sprintf(keyUsageVersion, entry.UserID, entry.FeatureType)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, versionTTL)
		pipe.Del(ctx, countKey)
		return nil
	})

	if err != nil {
		logger.WarnErr(err, "failed to invalidate cached usage count",
			"user_id", entry.UserID,
			"feature", entry.FeatureType,
		)
	}

	return nil
}

func (s *CachedStore) Count(ctx context.Context, userID string, feature limits.FeatureKey) (int, error) {
	countKey := fmt.Sprintf(keyUsageCount, userID, feature)
	versionKey := fmt.Sprintf(keyUsageVersion, userID, feature)

	cached, err := s.client.Get(ctx, countKey).Int()
	if err == nil {
		return cached, nil
	}

	if !errors.Is(err, redis.Nil) {
		// redis trouble degrades to the source of truth
		logger.WarnErr(err, "usage count cache unavailable", "user_id", userID, "feature", feature)
		return s.inner.Count(ctx, userID, feature)
	}

	var (
		count    int
		counted  bool
		innerErr error
	)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		count, innerErr = s.inner.Count(ctx, userID, feature)
		if innerErr != nil {
			return innerErr
		}

		counted = true

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, countKey, count, s.ttl)
			return nil
		})

		return err
	}, versionKey)

	if innerErr != nil {
		return 0, innerErr
	}

	if !counted {
		logger.WarnErr(err, "usage count cache unavailable", "user_id", userID, "feature", feature)
		return s.inner.Count(ctx, userID, feature)
	}

	// an insert raced the read; the count stays uncached
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		logger.WarnErr(err, "failed to fill usage count cache", "user_id", userID, "feature", feature)
	}

	return count, nil
}

// forwards reporting queries when the inner store supports them
func (s *CachedStore) CountsByFeature(ctx context.Context, userID string) (map[limits.FeatureKey]int, error) {
	if r, ok := s.inner.(Reporter); ok {
		return r.CountsByFeature(ctx, userID)
	}

	return nil, nil
}

func (s *CachedStore) DailyCounts(ctx context.Context, userID string, days int) ([]DailyUsage, error) {
	if r, ok := s.inner.(Reporter); ok {
		return r.DailyCounts(ctx, userID, days)
	}

	return nil, nil
}

func (s *CachedStore) ListEntries(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error) {
	if r, ok := s.inner.(Reporter); ok {
		return r.ListEntries(ctx, userID, limit, offset)
	}

	return nil, 0, nil
}
