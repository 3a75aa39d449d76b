package usage

import (
	"context"

	"codeberg.org/mediagate/server/mediagate/limits"
	"github.com/jackc/pgx/v5/pgxpool"
)

// usage_logs table backed by Postgres
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a Postgres-backed store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, entry *Entry) error {
	return s.db.QueryRow(
		ctx,
		queryInsert,
		entry.UserID,
		string(entry.FeatureType),
		entry.FeatureName,
	).Scan(&entry.ID, &entry.UsedAt)
}

func (s *PostgresStore) Count(ctx context.Context, userID string, feature limits.FeatureKey) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, queryCount, userID, string(feature)).Scan(&count)
	return count, err
}

func (s *PostgresStore) CountsByFeature(ctx context.Context, userID string) (map[limits.FeatureKey]int, error) {
	rows, err := s.db.Query(ctx, queryCountsByFeature, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()
	counts := make(map[limits.FeatureKey]int)

	for rows.Next() {
		var feature string
		var count int

		if err := rows.Scan(&feature, &count); err != nil {
			return nil, err
		}

		counts[limits.FeatureKey(feature)] = count
	}

	return counts, rows.Err()
}

func (s *PostgresStore) DailyCounts(ctx context.Context, userID string, days int) ([]DailyUsage, error) {
	rows, err := s.db.Query(ctx, queryDailyCounts, userID, days)
	if err != nil {
		return nil, err
	}

	defer rows.Close()
	history := []DailyUsage{}

	for rows.Next() {
		var du DailyUsage
		if err := rows.Scan(&du.Date, &du.Count); err != nil {
			return nil, err
		}

		history = append(history, du)
	}

	return history, rows.Err()
}

func (s *PostgresStore) ListEntries(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, queryCountEntries, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx, queryListEntries, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()
	entries := []Entry{}

	for rows.Next() {
		var e Entry
		var feature string

		if err := rows.Scan(&e.ID, &e.UserID, &feature, &e.FeatureName, &e.UsedAt); err != nil {
			return nil, 0, err
		}

		e.FeatureType = limits.FeatureKey(feature)
		entries = append(entries, e)
	}

	return entries, total, rows.Err()
}
