package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// in-memory inbox for tests and local runs
type MemoryStore struct {
	mu    sync.RWMutex
	items []*Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, req *CreateRequest) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := &Notification{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Body:      req.Body,
		Data:      req.Data,
		CreatedAt: time.Now().UTC(),
	}

	s.items = append(s.items, n)

	cp := *n
	return &cp, nil
}

func (s *MemoryStore) ListForUser(_ context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Notification{}
	for i := len(s.items) - 1; i >= 0 && len(out) < limit; i-- {
		n := s.items[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}

		out = append(out, *n)
	}

	return out, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, userID, notificationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.items {
		if n.ID == notificationID && n.UserID == userID {
			n.Read = true
		}
	}

	return nil
}

func (s *MemoryStore) MarkAllRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.items {
		if n.UserID == userID {
			n.Read = true
		}
	}

	return nil
}

func (s *MemoryStore) GetUnreadCount(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}

	return count, nil
}
