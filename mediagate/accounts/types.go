package accounts

import (
	"context"
	"errors"
	"time"

	"codeberg.org/mediagate/server/mediagate/profiles"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// a user-facing input problem; the message is shown as-is
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) UserMessage() string {
	return e.Message
}

// sign-up input
type SignUpRequest struct {
	Email           string `json:"email" binding:"required,email,max=254"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
	Username        string `json:"username" binding:"required,max=50"`
}

// sign-in input
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// issued session: the bearer token and the user it belongs to
type Session struct {
	AccessToken string            `json:"access_token"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        *profiles.Profile `json:"user"`
}

// a new account row set: credentials, profile and the initial free membership
type NewUser struct {
	Email        string
	Username     string
	PasswordHash string
	Provider     string
	ProviderID   string
	AvatarURL    *string
}

// stored password credentials and the profile they unlock
type Credentials struct {
	PasswordHash string
	Profile      profiles.Profile
}

// account persistence
type Store interface {
	// creates credentials, profile and free membership atomically; ErrEmailTaken on duplicates
	CreateUser(ctx context.Context, u NewUser) (*profiles.Profile, error)
	// returns ErrInvalidCredentials when no password account exists for the email
	FindCredentials(ctx context.Context, email string) (*Credentials, error)
	// returns the profile for a provider identity, creating the account on first sign-in
	FindOrCreateByProvider(ctx context.Context, u NewUser) (*profiles.Profile, error)
}
