package usage

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mediagate/server/mediagate/limits"
	"github.com/google/uuid"
)

// in-memory usage log, for tests and local runs without Postgres
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Insert(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uuid.NewString()
	entry.UsedAt = s.now().UTC()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *MemoryStore) Count(_ context.Context, userID string, feature limits.FeatureKey) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.entries {
		if e.UserID == userID && e.FeatureType == feature {
			count++
		}
	}

	return count, nil
}

func (s *MemoryStore) CountsByFeature(_ context.Context, userID string) (map[limits.FeatureKey]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[limits.FeatureKey]int)
	for _, e := range s.entries {
		if e.UserID == userID {
			counts[e.FeatureType]++
		}
	}

	return counts, nil
}

func (s *MemoryStore) DailyCounts(_ context.Context, userID string, days int) ([]DailyUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)
	byDate := make(map[string]int)
	var order []string

	// entries are appended in time order, walk backwards for newest first
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.UserID != userID || e.UsedAt.Before(cutoff) {
			continue
		}

		date := e.UsedAt.Format("2006-01-02")
		if _, seen := byDate[date]; !seen {
			order = append(order, date)
		}

		byDate[date]++
	}

	history := make([]DailyUsage, 0, len(order))
	for _, date := range order {
		history = append(history, DailyUsage{Date: date, Count: byDate[date]})
	}

	return history, nil
}

func (s *MemoryStore) ListEntries(_ context.Context, userID string, limit, offset int) ([]Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var mine []Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID == userID {
			mine = append(mine, s.entries[i])
		}
	}

	total := len(mine)
	if offset >= total {
		return []Entry{}, total, nil
	}

	end := min(total, offset+limit)
	return mine[offset:end], total, nil
}

// returns a copy of every entry, oldest first
func (s *MemoryStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
