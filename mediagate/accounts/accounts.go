// Package accounts issues and revokes sessions: password sign-up and sign-in,
// OAuth completion and sign-out. Profiles and the initial free membership are
// created together with the credentials.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/markbates/goth"
	"golang.org/x/crypto/bcrypt"
)

const providerEmail = "email"

// compared against when the email is unknown so sign-in timing doesn't leak accounts
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("mediagate-dummy-password"), bcrypt.MinCost)

// account and session operations
type Service struct {
	store   Store
	revoker auth.Revoker
	cost    int
}

// creates the account service
func NewService(store Store, revoker auth.Revoker) *Service {
	return &Service{store: store, revoker: revoker, cost: bcrypt.DefaultCost}
}

// registers a password account and signs it in
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	if err := ValidateSignUp(&req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile, err := s.store.CreateUser(ctx, NewUser{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Provider:     providerEmail,
		ProviderID:   req.Email,
	})

	if err != nil {
		return nil, err
	}

	return s.issue(profile)
}

// checks password credentials and issues a session
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	creds, err := s.store.FindCredentials(ctx, email)
	if errors.Is(err, ErrInvalidCredentials) {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password)) //nolint:errcheck,gosec // timing only
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(&creds.Profile)
}

// finds or creates the account behind an OAuth identity and issues a session
func (s *Service) CompleteOAuth(ctx context.Context, user goth.User) (*Session, error) {
	if user.UserID == "" {
		return nil, fmt.Errorf("oauth provider returned no user id")
	}

	var avatar *string
	if user.AvatarURL != "" {
		avatar = &user.AvatarURL
	}

	profile, err := s.store.FindOrCreateByProvider(ctx, NewUser{
		Email:      strings.ToLower(user.Email),
		Username:   oauthUsername(user),
		Provider:   user.Provider,
		ProviderID: user.UserID,
		AvatarURL:  avatar,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to resolve oauth account: %w", err)
	}

	return s.issue(profile)
}

// revokes the session token until its natural expiry
func (s *Service) SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revoker == nil || tokenID == "" {
		return nil
	}

	return s.revoker.Revoke(ctx, tokenID, expiresAt)
}

func (s *Service) issue(profile *profiles.Profile) (*Session, error) {
	token, err := auth.GenerateJWT(profile.ID, profile.Email, profile.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &Session{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(auth.TokenTTL),
		User:        profile,
	}, nil
}

func oauthUsername(user goth.User) string {
	switch {
	case user.Name != "":
		return user.Name
	case user.NickName != "":
		return user.NickName
	case user.Email != "":
		local, _, _ := strings.Cut(user.Email, "@")
		return local
	default:
		return user.Provider + " user"
	}
}
