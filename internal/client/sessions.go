package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mediagate/server/internal/authstate"
	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/mediagate/accounts"
)

// subscriber buffer; when it is full the oldest event gives way to the newest
const eventBuffer = 16

// session source and authenticator backed by the API and a session file
type Sessions struct {
	api  *Client
	path string
	now  func() time.Time

	mu      sync.RWMutex
	current *StoredSession
	subs    map[int]chan authstate.Event
	nextSub int

	// opens the OAuth consent page; defaults to printing the URL
	OpenURL func(url string) error
}

// creates a session manager persisting to path and loads any saved session
func NewSessions(api *Client, path string) (*Sessions, error) {
	s := &Sessions{
		api:  api,
		path: path,
		now:  time.Now,
		subs: make(map[int]chan authstate.Event),
		OpenURL: func(url string) error {
			fmt.Fprintf(os.Stderr, "open this URL to continue signing in:\n\n  %s\n\n", url)
			return nil
		},
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	api.SetTokenSource(s)
	return s, nil
}

// bearer token of the current session, empty when signed out or expired
func (s *Sessions) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil || s.current.expired(s.now()) {
		return ""
	}

	return s.current.AccessToken
}

func (s *Sessions) GetSession(_ context.Context) (*authstate.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessionLocked(), nil
}

func (s *Sessions) Subscribe() (<-chan authstate.Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan authstate.Event, eventBuffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Sessions) SignUp(ctx context.Context, req accounts.SignUpRequest) error {
	var resp sessionResponse
	if err := s.api.do(ctx, http.MethodPost, "/api/v1/auth/signup", req, &resp); err != nil {
		return err
	}

	return s.establish(resp)
}

func (s *Sessions) SignIn(ctx context.Context, req accounts.SignInRequest) error {
	var resp sessionResponse
	if err := s.api.do(ctx, http.MethodPost, "/api/v1/auth/signin", req, &resp); err != nil {
		return err
	}

	return s.establish(resp)
}

// revokes the token on the server and forgets it locally. A rejected token
// still signs out locally.
func (s *Sessions) SignOut(ctx context.Context) error {
	token := s.Token()

	if token != "" {
		err := s.api.doWithToken(ctx, http.MethodPost, "/api/v1/auth/signout", token, nil, nil)

		var apiErr *APIError
		if err != nil && !(errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized) {
			return err
		}
	}

	s.mu.Lock()
	s.current = nil
	err := s.saveLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.emit(authstate.EventSignedOut, nil)
	return nil
}

// re-emits the current session so subscribers reload it
func (s *Sessions) NotifyUserUpdated() {
	s.mu.RLock()
	session := s.sessionLocked()
	s.mu.RUnlock()

	if session != nil {
		s.emit(authstate.EventUserUpdated, session)
	}
}

func (s *Sessions) establish(resp sessionResponse) error {
	if resp.AccessToken == "" || resp.User == nil {
		return fmt.Errorf("server returned an incomplete session")
	}

	stored := &StoredSession{
		AccessToken: resp.AccessToken,
		ExpiresAt:   resp.ExpiresAt,
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
	}

	s.mu.Lock()
	s.current = stored
	err := s.saveLocked()
	session := s.sessionLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.emit(authstate.EventSignedIn, session)
	return nil
}

func (s *Sessions) sessionLocked() *authstate.Session {
	if s.current == nil || s.current.expired(s.now()) {
		return nil
	}

	return &authstate.Session{UserID: s.current.UserID, Email: s.current.Email}
}

func (s *Sessions) emit(kind authstate.EventKind, session *authstate.Session) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev := authstate.Event{Kind: kind, Session: session}

	for _, ch := range s.subs {
		for sent := false; !sent; {
			select {
			case ch <- ev:
				sent = true
			default:
				// each event carries the full session, so the newest supersedes the oldest
				select {
				case old := <-ch:
					logger.Debug("coalescing session event for slow subscriber", "dropped", old.Kind, "event", kind)
				default:
				}
			}
		}
	}
}

func (s *Sessions) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var stored StoredSession
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warn("ignoring unreadable session file", "path", s.path, "error", err)
		return nil
	}

	if stored.AccessToken != "" {
		s.current = &stored
	}

	return nil
}

func (s *Sessions) saveLocked() error {
	if s.current == nil {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	data, err := json.Marshal(s.current)
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}
