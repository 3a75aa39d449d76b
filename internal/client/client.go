// Package client talks to the mediagate API on behalf of the CLI. It provides
// the remote session source and the HTTP-backed profile and usage stores the
// auth state controller runs on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"codeberg.org/mediagate/server/internal/config"
	"golang.org/x/time/rate"
)

// timeout for a single API request
const requestTimeout = 30 * time.Second

// supplies the bearer token for requests; empty means anonymous
type TokenSource interface {
	Token() string
}

// error body returned by the API
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// server messages for client errors are written for end users
func (e *APIError) UserMessage() string {
	if e.Status >= 400 && e.Status < 500 {
		return e.Message
	}

	return ""
}

// HTTP client for the REST API
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
}

// creates an API client; requests are throttled to cfg.RequestsPerSecond
func New(cfg *config.ClientConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

// attaches the token source used for authenticated requests
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// base URL of the API
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doWithToken(ctx, method, path, c.token(), body, out)
}

func (c *Client) doWithToken(ctx context.Context, method, path, token string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
		}

		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}

	return c.tokens.Token()
}
