package membership

import (
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
)

type MembershipResponse struct {
	Membership *profiles.Membership `json:"membership"`
}

// one purchasable tier and its quotas
type Plan struct {
	Tier            limits.Tier                        `json:"tier"`
	Name            string                             `json:"name"`
	Price           string                             `json:"price"`
	Benefits        []string                           `json:"benefits"`
	FileSizeLimitMB int64                              `json:"file_size_limit_mb"`
	Limits          map[limits.FeatureKey]limits.Quota `json:"limits"`
}

type PlansResponse struct {
	Plans []Plan `json:"plans"`
}

type UpgradeRequest struct {
	Tier limits.Tier `json:"tier" binding:"required"`
}
