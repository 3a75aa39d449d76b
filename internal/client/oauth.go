package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// completes an OAuth sign-in through the browser: the API redirects back to a
// loopback listener with the issued token.
func (s *Sessions) SignInWithOAuth(ctx context.Context, provider string) error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start callback listener: %w", err)
	}

	redirect := fmt.Sprintf("http://%s/callback", listener.Addr().String())
	tokens := make(chan url.Values, 1)

	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/callback" {
				http.NotFound(w, r)
				return
			}

			fmt.Fprintln(w, "signed in, you can close this window") //nolint:errcheck

			select {
			case tokens <- r.URL.Query():
			default:
			}
		}),
	}

	go srv.Serve(listener) //nolint:errcheck // closed below
	defer srv.Close()      //nolint:errcheck

	begin := fmt.Sprintf("%s/api/v1/auth/%s?redirect_uri=%s",
		s.api.Endpoint(), url.PathEscape(provider), url.QueryEscape(redirect))

	if err := s.OpenURL(begin); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	var query url.Values
	select {
	case <-ctx.Done():
		return ctx.Err()
	case query = <-tokens:
	}

	if msg := query.Get("error"); msg != "" {
		return &APIError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: msg}
	}

	token := query.Get("access_token")
	if token == "" {
		return fmt.Errorf("callback carried no token")
	}

	expiresAt, _ := time.Parse(time.RFC3339, query.Get("expires_at"))

	var me meResponse
	if err := s.api.doWithToken(ctx, http.MethodGet, "/api/v1/auth/me", token, nil, &me); err != nil {
		return err
	}

	return s.establish(sessionResponse{AccessToken: token, ExpiresAt: expiresAt, User: me.User})
}
