package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	apierrors "codeberg.org/mediagate/server/internal/errors"
	"codeberg.org/mediagate/server/mediagate/features"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
)

// profiles.Store over the API
type ProfileStore struct {
	api *Client
}

// creates an API-backed profile store
func NewProfileStore(api *Client) *ProfileStore {
	return &ProfileStore{api: api}
}

func (s *ProfileStore) FindProfile(ctx context.Context, userID string) (*profiles.Profile, error) {
	var resp profileResponse

	err := s.api.do(ctx, http.MethodGet, "/api/v1/profiles/"+url.PathEscape(userID), nil, &resp)
	if isNotFound(err) {
		return nil, profiles.ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	if resp.Profile == nil {
		return nil, profiles.ErrNotFound
	}

	return resp.Profile, nil
}

func (s *ProfileStore) FindActiveMembership(ctx context.Context, userID string) (*profiles.Membership, error) {
	var resp membershipResponse

	path := "/api/v1/memberships/active?user_id=" + url.QueryEscape(userID)
	if err := s.api.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Membership, nil
}

// usage.Store over the API
type UsageStore struct {
	api *Client
}

// creates an API-backed usage store
func NewUsageStore(api *Client) *UsageStore {
	return &UsageStore{api: api}
}

// the server records the entry for the token's user
func (s *UsageStore) Insert(ctx context.Context, entry *usage.Entry) error {
	var resp entryResponse

	req := logUsageRequest{FeatureType: entry.FeatureType, FeatureName: entry.FeatureName}
	if err := s.api.do(ctx, http.MethodPost, "/api/v1/usage", req, &resp); err != nil {
		return err
	}

	if resp.Entry != nil {
		entry.ID = resp.Entry.ID
		entry.UsedAt = resp.Entry.UsedAt
	}

	return nil
}

func (s *UsageStore) Count(ctx context.Context, _ string, feature limits.FeatureKey) (int, error) {
	var resp countResponse

	path := "/api/v1/usage/count?feature=" + url.QueryEscape(string(feature))
	if err := s.api.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}

	return resp.Count, nil
}

// lists the membership plans
func (c *Client) Plans(ctx context.Context) ([]Plan, error) {
	var resp plansResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/membership/plans", nil, &resp); err != nil {
		return nil, err
	}

	return resp.Plans, nil
}

// returns the signed-in user's usage per feature
func (c *Client) Usage(ctx context.Context) (*UsageSummary, error) {
	var resp UsageSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/usage", nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// asks the server for an upgrade to tier
func (c *Client) Upgrade(ctx context.Context, tier limits.Tier) error {
	return c.do(ctx, http.MethodPost, "/api/v1/membership/upgrade", map[string]limits.Tier{"tier": tier}, nil)
}

// runs a gated job on the server
func (c *Client) Process(ctx context.Context, job features.Job) (*features.Outcome, error) {
	var outcome features.Outcome

	path := "/api/v1/process/" + url.PathEscape(string(job.Feature))
	err := c.do(ctx, http.MethodPost, path, job, &outcome)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == apierrors.CodeQuotaExceeded {
		return nil, fmt.Errorf("%w: %s", features.ErrNotEntitled, apiErr.Message)
	}

	if err != nil {
		return nil, err
	}

	return &outcome, nil
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == apierrors.CodeNotFound
}

// builds a limits table from the served plans so local decisions match the server
func TableFromPlans(plans []Plan) *limits.Table {
	table := limits.NewTable()

	for _, plan := range plans {
		for feature, quota := range plan.Limits {
			table.Set(feature, plan.Tier, quota)
		}
	}

	return table
}
