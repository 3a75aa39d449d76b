package profiles

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mediagate/server/mediagate/limits"
	"github.com/google/uuid"
)

// in-memory profile and membership rows, for tests and local runs
type MemoryStore struct {
	mu          sync.RWMutex
	profiles    map[string]*Profile
	memberships []*Membership // insertion order breaks created_at ties
	now         func() time.Time
}

// creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*Profile),
		now:      time.Now,
	}
}

// inserts or replaces a profile row
func (s *MemoryStore) PutProfile(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.profiles[p.ID] = &cp
}

// appends a membership row as-is
func (s *MemoryStore) AddMembership(m *Membership) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *m
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}

	s.memberships = append(s.memberships, &cp)
}

func (s *MemoryStore) FindProfile(_ context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *p
	return &cp, nil
}

func (s *MemoryStore) FindActiveMembership(_ context.Context, userID string) (*Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()

	var newest *Membership
	for _, m := range s.memberships {
		if m.UserID != userID || !m.IsActive {
			continue
		}

		if m.ExpiresAt != nil && !m.ExpiresAt.After(now) {
			continue
		}

		// later rows win ties, matching the store's creation order
		if newest == nil || !m.CreatedAt.Before(newest.CreatedAt) {
			newest = m
		}
	}

	if newest == nil {
		return nil, nil
	}

	cp := *newest
	return &cp, nil
}

// updates the username and avatar of a profile
func (s *MemoryStore) UpdateProfile(_ context.Context, userID, username string, avatarURL *string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}

	p.Username = username
	p.AvatarURL = avatarURL
	p.UpdatedAt = s.now().UTC()

	cp := *p
	return &cp, nil
}

// deactivates existing memberships and appends a new active grant
func (s *MemoryStore) GrantMembership(_ context.Context, userID string, tier limits.Tier, expiresAt *time.Time) (*Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.memberships {
		if m.UserID == userID {
			m.IsActive = false
		}
	}

	now := s.now().UTC()
	m := &Membership{
		ID:        uuid.NewString(),
		UserID:    userID,
		Tier:      tier,
		StartedAt: now,
		ExpiresAt: expiresAt,
		IsActive:  true,
		CreatedAt: now,
	}

	s.memberships = append(s.memberships, m)

	cp := *m
	return &cp, nil
}
