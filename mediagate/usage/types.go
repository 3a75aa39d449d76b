package usage

import (
	"context"
	"errors"
	"time"

	"codeberg.org/mediagate/server/mediagate/limits"
)

var (
	// the action needs a signed-in user
	ErrAuthRequired = errors.New("authentication required")

	// the usage entry could not be appended
	ErrLedgerWrite = errors.New("failed to record usage")
)

// immutable record of one successful feature invocation
type Entry struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	FeatureType limits.FeatureKey `json:"feature_type"`
	FeatureName string            `json:"feature_name"`
	UsedAt      time.Time         `json:"used_at"`
}

// append-only usage log backend
type Store interface {
	// appends the entry, filling ID and UsedAt
	Insert(ctx context.Context, entry *Entry) error
	// counts entries for the user and feature
	Count(ctx context.Context, userID string, feature limits.FeatureKey) (int, error)
}

// optional reporting queries
type Reporter interface {
	CountsByFeature(ctx context.Context, userID string) (map[limits.FeatureKey]int, error)
	DailyCounts(ctx context.Context, userID string, days int) ([]DailyUsage, error)
	// newest first, with the user's total entry count
	ListEntries(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error)
}

// usage count for one day
type DailyUsage struct {
	Date  string `json:"date"` // Format: "2006-01-02"
	Count int    `json:"count"`
}
