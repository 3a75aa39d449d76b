package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/mediagate/server/mediagate/limits"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// handles profile and membership database operations
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a Postgres-backed store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindProfile(ctx context.Context, userID string) (*Profile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, queryFindProfile, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	return p, err
}

func (s *PostgresStore) FindActiveMembership(ctx context.Context, userID string) (*Membership, error) {
	m, err := scanMembership(s.db.QueryRow(ctx, queryFindActiveMembership, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	return m, err
}

// updates the username and avatar of a profile
func (s *PostgresStore) UpdateProfile(ctx context.Context, userID, username string, avatarURL *string) (*Profile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, queryUpdateProfile, username, avatarURL, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	return p, err
}

// replaces the user's active membership with a new grant in one transaction
func (s *PostgresStore) GrantMembership(ctx context.Context, userID string, tier limits.Tier, expiresAt *time.Time) (*Membership, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, queryDeactivateMemberships, userID); err != nil {
		return nil, fmt.Errorf("failed to deactivate memberships: %w", err)
	}

	m, err := scanMembership(tx.QueryRow(ctx, queryInsertMembership, userID, string(tier), expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit membership grant: %w", err)
	}

	return m, nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile

	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.Username,
		&p.AvatarURL,
		&p.IsAdmin,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &p, nil
}

func scanMembership(row pgx.Row) (*Membership, error) {
	var m Membership
	var tier string

	err := row.Scan(
		&m.ID,
		&m.UserID,
		&tier,
		&m.StartedAt,
		&m.ExpiresAt,
		&m.IsActive,
		&m.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	m.Tier = limits.Tier(tier)
	return &m, nil
}
