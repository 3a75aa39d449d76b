package notifications

import (
	"context"
	"time"
)

// notification types
const (
	TypeMembershipChanged = "membership_changed"
)

// a persisted message for a user, kept until read
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

type CreateRequest struct {
	UserID string
	Type   string
	Title  string
	Body   string
	Data   map[string]any
}

// notification persistence
type Store interface {
	Create(ctx context.Context, req *CreateRequest) (*Notification, error)
	ListForUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	GetUnreadCount(ctx context.Context, userID string) (int, error)
}
