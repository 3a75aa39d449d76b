package usage

import (
	"codeberg.org/mediagate/server/api/rest/pagination"
	"codeberg.org/mediagate/server/mediagate/entitlements"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/usage"
)

// days of history returned by GET /usage
const historyDays = 30

type SummaryResponse struct {
	Tier     limits.Tier           `json:"tier"`
	Features []entitlements.Result `json:"features"`
	History  []usage.DailyUsage    `json:"history"` // Last 30 days
}

type CountResponse struct {
	Feature limits.FeatureKey `json:"feature"`
	Count   int               `json:"count"`
}

type LogUsageRequest struct {
	FeatureType limits.FeatureKey `json:"feature_type" binding:"required"`
	FeatureName string            `json:"feature_name" binding:"max=100"`
}

type EntryResponse struct {
	Entry *usage.Entry `json:"entry"`
}

type EntriesResponse struct {
	Entries    []usage.Entry   `json:"entries"`
	Pagination pagination.Meta `json:"pagination"`
}
