package accounts

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// account rows in Postgres
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a Postgres-backed account store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, u NewUser) (*profiles.Profile, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	profile, err := insertUser(ctx, tx, u)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit account: %w", err)
	}

	return profile, nil
}

func (s *PostgresStore) FindCredentials(ctx context.Context, email string) (*Credentials, error) {
	var creds Credentials
	var hash *string
	p := &creds.Profile

	err := s.db.QueryRow(ctx, queryFindCredentials, email).Scan(
		&p.ID,
		&p.Email,
		&hash,
		&p.Username,
		&p.AvatarURL,
		&p.IsAdmin,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) || (err == nil && hash == nil) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, err
	}

	creds.PasswordHash = *hash
	return &creds, nil
}

func (s *PostgresStore) FindOrCreateByProvider(ctx context.Context, u NewUser) (*profiles.Profile, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	profile, err := scanProfile(tx.QueryRow(ctx, queryFindByProvider, u.Provider, u.ProviderID))
	if err == nil {
		return profile, tx.Commit(ctx)
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	profile, err = insertUser(ctx, tx, u)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit account: %w", err)
	}

	return profile, nil
}

func insertUser(ctx context.Context, tx pgx.Tx, u NewUser) (*profiles.Profile, error) {
	var hash *string
	if u.PasswordHash != "" {
		hash = &u.PasswordHash
	}

	var userID string
	err := tx.QueryRow(ctx, queryInsertAuthUser, u.Email, hash, u.Provider, u.ProviderID).Scan(&userID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return nil, ErrEmailTaken
	}

	if err != nil {
		return nil, fmt.Errorf("failed to insert credentials: %w", err)
	}

	profile, err := scanProfile(tx.QueryRow(ctx, queryInsertProfile, userID, u.Email, u.Username, u.AvatarURL))
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}

	if _, err := tx.Exec(ctx, queryInsertFreeMembership, userID); err != nil {
		return nil, fmt.Errorf("failed to insert membership: %w", err)
	}

	return profile, nil
}

func scanProfile(row pgx.Row) (*profiles.Profile, error) {
	var p profiles.Profile

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
