package client

import (
	"time"

	"codeberg.org/mediagate/server/mediagate/entitlements"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
)

// session persisted between CLI runs
type StoredSession struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
}

func (s *StoredSession) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// API response/request types

type sessionResponse struct {
	AccessToken string            `json:"access_token"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        *profiles.Profile `json:"user"`
}

type meResponse struct {
	User       *profiles.Profile    `json:"user"`
	Membership *profiles.Membership `json:"membership"`
}

type profileResponse struct {
	Profile *profiles.Profile `json:"profile"`
}

type membershipResponse struct {
	Membership *profiles.Membership `json:"membership"`
}

type logUsageRequest struct {
	FeatureType limits.FeatureKey `json:"feature_type"`
	FeatureName string            `json:"feature_name"`
}

type entryResponse struct {
	Entry *usage.Entry `json:"entry"`
}

type countResponse struct {
	Feature limits.FeatureKey `json:"feature"`
	Count   int               `json:"count"`
}

// a membership plan as listed by the API
type Plan struct {
	Tier            limits.Tier                        `json:"tier"`
	Name            string                             `json:"name"`
	Price           string                             `json:"price"`
	Benefits        []string                           `json:"benefits"`
	FileSizeLimitMB int64                              `json:"file_size_limit_mb"`
	Limits          map[limits.FeatureKey]limits.Quota `json:"limits"`
}

type plansResponse struct {
	Plans []Plan `json:"plans"`
}

// per-feature usage view for the signed-in user
type UsageSummary struct {
	Tier     limits.Tier           `json:"tier"`
	Features []entitlements.Result `json:"features"`
	History  []usage.DailyUsage    `json:"history,omitempty"`
}
