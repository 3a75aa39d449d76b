// Package notifications keeps a per-user inbox of account notices, such as
// membership changes, for clients that were offline when they happened.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// notifications table backed by Postgres
type Service struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Notification, error) {
	var data any // NULL when there is no payload

	if req.Data != nil {
		encoded, err := json.Marshal(req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode notification data: %w", err)
		}

		data = string(encoded)
	}

	var n Notification

	err := s.db.QueryRow(ctx, queryCreate, req.UserID, req.Type, req.Title, req.Body, data).Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Body,
		&n.Read,
		&n.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	n.Data = req.Data
	return &n, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error) {
	query := queryListForUser
	if unreadOnly {
		query = queryListUnreadForUser
	}

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return pgx.CollectRows(rows, scanNotification)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	_, err := s.db.Exec(ctx, queryMarkRead, notificationID, userID)
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, queryMarkAllRead, userID)
	return err
}

func (s *Service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, queryUnreadCount, userID).Scan(&count)
	return count, err
}

func scanNotification(row pgx.CollectableRow) (Notification, error) {
	var n Notification
	var data []byte

	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &data, &n.Read, &n.CreatedAt); err != nil {
		return n, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			n.Data = nil // ignore malformed JSON
		}
	}

	return n, nil
}
