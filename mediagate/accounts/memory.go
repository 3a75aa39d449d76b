package accounts

import (
	"context"
	"strings"
	"sync"
	"time"

	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/google/uuid"
)

// in-memory accounts writing profiles and memberships into a shared profiles.MemoryStore
type MemoryStore struct {
	mu         sync.Mutex
	rows       *profiles.MemoryStore
	byEmail    map[string]*Credentials
	byProvider map[string]string
}

// creates an account store over rows
func NewMemoryStore(rows *profiles.MemoryStore) *MemoryStore {
	return &MemoryStore{
		rows:       rows,
		byEmail:    make(map[string]*Credentials),
		byProvider: make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, u NewUser) (*profiles.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, exists := s.byEmail[email]; exists && u.Provider == providerEmail {
		return nil, ErrEmailTaken
	}

	profile := s.insertLocked(u)

	if u.Provider == providerEmail {
		s.byEmail[email] = &Credentials{PasswordHash: u.PasswordHash, Profile: *profile}
	}

	return profile, nil
}

func (s *MemoryStore) FindCredentials(_ context.Context, email string) (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrInvalidCredentials
	}

	cp := *creds
	return &cp, nil
}

func (s *MemoryStore) FindOrCreateByProvider(ctx context.Context, u NewUser) (*profiles.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID, ok := s.byProvider[u.Provider+":"+u.ProviderID]; ok {
		return s.rows.FindProfile(ctx, userID)
	}

	return s.insertLocked(u), nil
}

func (s *MemoryStore) insertLocked(u NewUser) *profiles.Profile {
	now := time.Now().UTC()
	profile := &profiles.Profile{
		ID:        uuid.NewString(),
		Email:     u.Email,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.rows.PutProfile(profile)
	s.rows.AddMembership(&profiles.Membership{
		UserID:    profile.ID,
		Tier:      limits.TierFree,
		StartedAt: now,
		IsActive:  true,
		CreatedAt: now,
	})

	s.byProvider[u.Provider+":"+u.ProviderID] = profile.ID
	return profile
}
