package usage

import (
	"context"
	"fmt"

	"codeberg.org/mediagate/server/internal/metrics"
	"codeberg.org/mediagate/server/mediagate/limits"
)

// appends and counts usage entries on top of a Store
type Ledger struct {
	store Store
}

// creates a ledger over the given store
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// records one use of feature by userID. Failures are never dropped.
func (l *Ledger) Log(ctx context.Context, userID string, feature limits.FeatureKey, label string) (*Entry, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	entry := &Entry{
		UserID:      userID,
		FeatureType: feature,
		FeatureName: label,
	}

	if err := l.store.Insert(ctx, entry); err != nil {
		metrics.UsageWrites.WithLabelValues(string(feature), "error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrLedgerWrite, err)
	}

	metrics.UsageWrites.WithLabelValues(string(feature), "ok").Inc()
	return entry, nil
}

// counts prior uses of feature. An empty userID has used nothing.
func (l *Ledger) Count(ctx context.Context, userID string, feature limits.FeatureKey) (int, error) {
	if userID == "" {
		return 0, nil
	}

	count, err := l.store.Count(ctx, userID, feature)
	if err != nil {
		return 0, fmt.Errorf("failed to count usage: %w", err)
	}

	return count, nil
}

// returns per-feature totals, or nil when the store cannot report
func (l *Ledger) CountsByFeature(ctx context.Context, userID string) (map[limits.FeatureKey]int, error) {
	reporter, ok := l.store.(Reporter)
	if !ok {
		return nil, nil
	}

	return reporter.CountsByFeature(ctx, userID)
}

// returns per-day totals for the last days, or nil when the store cannot report
func (l *Ledger) History(ctx context.Context, userID string, days int) ([]DailyUsage, error) {
	reporter, ok := l.store.(Reporter)
	if !ok {
		return nil, nil
	}

	return reporter.DailyCounts(ctx, userID, days)
}

// returns a page of the user's entries, newest first, and the total count
func (l *Ledger) Entries(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error) {
	reporter, ok := l.store.(Reporter)
	if !ok {
		return []Entry{}, 0, nil
	}

	return reporter.ListEntries(ctx, userID, limit, offset)
}
