package admin

import (
	"time"

	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
)

type GrantMembershipRequest struct {
	Tier      limits.Tier `json:"tier" binding:"required"`
	ExpiresAt *time.Time  `json:"expires_at"`
}

type MembershipResponse struct {
	Membership *profiles.Membership `json:"membership"`
}

type UserUsageResponse struct {
	UserID string                    `json:"user_id"`
	Counts map[limits.FeatureKey]int `json:"counts"`
}
