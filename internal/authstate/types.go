package authstate

import (
	"context"

	"codeberg.org/mediagate/server/mediagate/accounts"
	"codeberg.org/mediagate/server/mediagate/profiles"
)

// kind of session change delivered by a SessionSource
type EventKind string

const (
	EventInitialSession EventKind = "INITIAL_SESSION"
	EventSignedIn       EventKind = "SIGNED_IN"
	EventSignedOut      EventKind = "SIGNED_OUT"
	EventTokenRefreshed EventKind = "TOKEN_REFRESHED"
	EventUserUpdated    EventKind = "USER_UPDATED"
)

// identity of the signed-in user as observed from the auth collaborator.
// credentials stay with the collaborator.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// one session change; Session is nil when signed out
type Event struct {
	Kind    EventKind
	Session *Session
}

// observes the current session and its changes
type SessionSource interface {
	// returns nil when no session exists
	GetSession(ctx context.Context) (*Session, error)
	// delivers events in emission order until the returned func is called
	Subscribe() (<-chan Event, func())
}

// session-issuing operations of the auth collaborator
type Authenticator interface {
	SignUp(ctx context.Context, req accounts.SignUpRequest) error
	SignIn(ctx context.Context, req accounts.SignInRequest) error
	SignOut(ctx context.Context) error
	SignInWithOAuth(ctx context.Context, provider string) error
}

// resolves a user id into profile and membership; must not fail
type ProfileLoader interface {
	Load(ctx context.Context, userID string) profiles.Result
}

// snapshot of the controller state
type State struct {
	// observed session, present even while the profile row is still missing
	Session    *Session
	User       *profiles.Profile
	Membership *profiles.Membership
	Loading    bool
}

// reports whether a user profile is loaded
func (s State) SignedIn() bool {
	return s.User != nil
}
