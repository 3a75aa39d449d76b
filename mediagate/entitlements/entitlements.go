// Package entitlements decides whether a tier may invoke a feature given how
// often it has been used. Decisions are pure and fail closed.
package entitlements

import "codeberg.org/mediagate/server/mediagate/limits"

// combined entitlement view. Limit and Remaining are -1 when unlimited.
type Result struct {
	Allowed   bool              `json:"allowed"`
	Feature   limits.FeatureKey `json:"feature"`
	Tier      limits.Tier       `json:"tier"`
	Used      int               `json:"used"`
	Limit     int               `json:"limit"`
	Remaining int               `json:"remaining"`
	Unlimited bool              `json:"unlimited"`
	Reason    string            `json:"reason,omitempty"`
}

// deny reasons
const (
	ReasonNoEntitlement = "feature_not_available"
	ReasonQuotaExceeded = "quota_exceeded"
)

// reports whether tier may use feature after usageCount prior uses.
// Absent (feature, tier) entries deny.
func CanUse(table *limits.Table, tier limits.Tier, feature limits.FeatureKey, usageCount int) bool {
	q, ok := table.Lookup(feature, tier)
	if !ok {
		return false
	}

	if q.IsUnlimited() {
		return true
	}

	return usageCount < q.Limit()
}

// returns the uses left: unlimited stays unlimited, finite quotas never go below zero
func Remaining(table *limits.Table, tier limits.Tier, feature limits.FeatureKey, usageCount int) limits.Quota {
	q, ok := table.Lookup(feature, tier)
	if !ok {
		return limits.Finite(0)
	}

	if q.IsUnlimited() {
		return q
	}

	return limits.Finite(max(0, q.Limit()-usageCount))
}

// evaluates the decision and the numbers shown next to it
func Check(table *limits.Table, tier limits.Tier, feature limits.FeatureKey, usageCount int) Result {
	if usageCount < 0 {
		usageCount = 0
	}

	result := Result{
		Allowed: CanUse(table, tier, feature, usageCount),
		Feature: feature,
		Tier:    tier,
		Used:    usageCount,
	}

	q, ok := table.Lookup(feature, tier)

	switch {
	case !ok:
		result.Reason = ReasonNoEntitlement
	case q.IsUnlimited():
		result.Unlimited = true
		result.Limit = -1
		result.Remaining = -1
	default:
		result.Limit = q.Limit()
		result.Remaining = Remaining(table, tier, feature, usageCount).Limit()
		if !result.Allowed {
			result.Reason = ReasonQuotaExceeded
		}
	}

	return result
}
