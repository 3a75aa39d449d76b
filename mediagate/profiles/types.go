package profiles

import (
	"context"
	"errors"
	"time"

	"codeberg.org/mediagate/server/mediagate/limits"
)

var (
	// no row matches; expected for users whose profile is still being provisioned
	ErrNotFound = errors.New("profile not found")

	// the profile fetch ran past its deadline
	ErrLoadTimeout = errors.New("profile load timed out")
)

// user-editable account details
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	IsAdmin   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// a tier grant for a user
type Membership struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Tier      limits.Tier `json:"tier"`
	StartedAt time.Time   `json:"started_at"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

// profile and membership reads used by the loader
type Store interface {
	// returns ErrNotFound when the profile row does not exist
	FindProfile(ctx context.Context, userID string) (*Profile, error)
	// returns the most recently created active membership, or nil when there is none
	FindActiveMembership(ctx context.Context, userID string) (*Membership, error)
}

// read-write access used by the API: profile edits and membership grants
type Repository interface {
	Store
	UpdateProfile(ctx context.Context, userID, username string, avatarURL *string) (*Profile, error)
	// deactivates the current membership and inserts the new grant
	GrantMembership(ctx context.Context, userID string, tier limits.Tier, expiresAt *time.Time) (*Membership, error)
}

// outcome of a load. Profile and Membership may be nil independently.
type Result struct {
	Profile    *Profile
	Membership *Membership
	// escalated failures, already logged
	Err error
}

// the tier in effect, or free when no membership was loaded
func (r Result) Tier() limits.Tier {
	if r.Membership == nil {
		return limits.TierFree
	}

	return r.Membership.Tier
}
