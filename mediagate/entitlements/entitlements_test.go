package entitlements

import (
	"testing"

	"codeberg.org/mediagate/server/mediagate/limits"
	"github.com/stretchr/testify/assert"
)

func testTable() *limits.Table {
	return limits.Default().
		Set("batch_export", limits.TierFree, limits.Finite(0)).
		Set("batch_export", limits.TierPremium, limits.Finite(5)).
		Set("batch_export", limits.TierEnterprise, limits.Unlimited())
}

func TestCanUse_FiniteQuota(t *testing.T) {
	table := testTable()

	for _, feature := range table.Features() {
		for _, tier := range limits.Tiers {
			q, ok := table.Lookup(feature, tier)
			if !ok || q.IsUnlimited() {
				continue
			}

			for count := 0; count <= q.Limit()+5; count++ {
				assert.Equal(t, count < q.Limit(), CanUse(table, tier, feature, count),
					"feature=%s tier=%s count=%d", feature, tier, count)
			}
		}
	}
}

func TestCanUse_UnlimitedQuota(t *testing.T) {
	table := testTable()

	for _, count := range []int{0, 1, 50, 1_000_000} {
		assert.True(t, CanUse(table, limits.TierPremium, limits.FeatureAudioConvert, count))
		assert.True(t, CanUse(table, limits.TierEnterprise, "batch_export", count))
	}
}

func TestCanUse_UnknownFeatureFailsClosed(t *testing.T) {
	table := testTable()

	for _, tier := range append(limits.Tiers, "platinum") {
		for count := 0; count < 5; count++ {
			assert.False(t, CanUse(table, tier, "pdf_merge", count))
		}
	}

	assert.False(t, CanUse(nil, limits.TierPremium, limits.FeatureAudioConvert, 0))
}

func TestRemaining_NeverNegative(t *testing.T) {
	table := testTable()

	for count := 0; count <= 10; count++ {
		r := Remaining(table, limits.TierPremium, "batch_export", count)
		assert.Equal(t, max(0, 5-count), r.Limit())
		assert.GreaterOrEqual(t, r.Limit(), 0)
	}

	assert.True(t, Remaining(table, limits.TierPremium, limits.FeatureAudioConvert, 99).IsUnlimited())
	assert.Equal(t, 0, Remaining(table, limits.TierFree, "pdf_merge", 0).Limit())
}

func TestCheck(t *testing.T) {
	table := testTable()

	tests := []struct {
		name    string
		tier    limits.Tier
		feature limits.FeatureKey
		used    int
		want    Result
	}{
		{
			name:    "free trial available",
			tier:    limits.TierFree,
			feature: limits.FeatureAudioConvert,
			used:    0,
			want:    Result{Allowed: true, Feature: limits.FeatureAudioConvert, Tier: limits.TierFree, Used: 0, Limit: 1, Remaining: 1},
		},
		{
			name:    "free trial spent",
			tier:    limits.TierFree,
			feature: limits.FeatureAudioConvert,
			used:    1,
			want:    Result{Allowed: false, Feature: limits.FeatureAudioConvert, Tier: limits.TierFree, Used: 1, Limit: 1, Remaining: 0, Reason: ReasonQuotaExceeded},
		},
		{
			name:    "premium unlimited",
			tier:    limits.TierPremium,
			feature: limits.FeatureVideoConvert,
			used:    42,
			want:    Result{Allowed: true, Feature: limits.FeatureVideoConvert, Tier: limits.TierPremium, Used: 42, Limit: -1, Remaining: -1, Unlimited: true},
		},
		{
			name:    "unknown feature",
			tier:    limits.TierEnterprise,
			feature: "pdf_merge",
			used:    0,
			want:    Result{Allowed: false, Feature: "pdf_merge", Tier: limits.TierEnterprise, Reason: ReasonNoEntitlement},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Check(table, tt.tier, tt.feature, tt.used))
		})
	}
}
