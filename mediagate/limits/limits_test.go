package limits

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EveryFeatureHasEveryTier(t *testing.T) {
	table := Default()

	require.NoError(t, table.Validate(Features...))

	for _, feature := range Features {
		free, ok := table.Lookup(feature, TierFree)
		require.True(t, ok)
		assert.Equal(t, 1, free.Limit(), "free quota for %s", feature)
		assert.False(t, free.IsUnlimited())

		for _, tier := range []Tier{TierPremium, TierEnterprise} {
			q, ok := table.Lookup(feature, tier)
			require.True(t, ok)
			assert.True(t, q.IsUnlimited(), "%s quota for %s", tier, feature)
		}
	}
}

func TestLookup_UnknownFeatureOrTier(t *testing.T) {
	table := Default()

	_, ok := table.Lookup("pdf_merge", TierPremium)
	assert.False(t, ok)

	_, ok = table.Lookup(FeatureAudioConvert, Tier("platinum"))
	assert.False(t, ok)

	var nilTable *Table
	_, ok = nilTable.Lookup(FeatureAudioConvert, TierFree)
	assert.False(t, ok)
}

func TestValidate_ReportsGaps(t *testing.T) {
	table := NewTable().
		Set(FeatureAudioConvert, TierFree, Finite(1)).
		Set(FeatureAudioConvert, TierPremium, Unlimited())

	err := table.Validate(FeatureAudioConvert, FeatureVideoConvert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `feature "video_convert" is not registered`)
	assert.Contains(t, err.Error(), `feature "audio_convert" has no enterprise quota`)
}

func TestFinite_ClampsNegative(t *testing.T) {
	q := Finite(-3)
	assert.Equal(t, 0, q.Limit())
	assert.True(t, q.IsSet())
}

func TestQuota_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Quota{"a": Finite(3), "b": Unlimited()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":"unlimited"}`, string(data))
}

func TestQuota_UnmarshalJSON(t *testing.T) {
	var got map[string]Quota
	require.NoError(t, json.Unmarshal([]byte(`{"a":3,"b":"unlimited","c":"2"}`), &got))

	assert.Equal(t, 3, got["a"].Limit())
	assert.True(t, got["b"].IsUnlimited())
	assert.Equal(t, 2, got["c"].Limit())

	var q Quota
	assert.Error(t, json.Unmarshal([]byte(`-1`), &q))
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &q))
	assert.Error(t, json.Unmarshal([]byte(`true`), &q))
}

func TestParse_OverlaysBase(t *testing.T) {
	data := []byte(`
features:
  audio_convert:
    free: 3
  pdf_merge:
    free: 0
    premium: "25"
    enterprise: unlimited
`)

	table, err := Parse(data, Default())
	require.NoError(t, err)

	q, ok := table.Lookup(FeatureAudioConvert, TierFree)
	require.True(t, ok)
	assert.Equal(t, 3, q.Limit())

	q, ok = table.Lookup("pdf_merge", TierPremium)
	require.True(t, ok)
	assert.Equal(t, 25, q.Limit())

	q, ok = table.Lookup("pdf_merge", TierEnterprise)
	require.True(t, ok)
	assert.True(t, q.IsUnlimited())

	// base table is untouched
	q, _ = Default().Lookup(FeatureAudioConvert, TierFree)
	assert.Equal(t, 1, q.Limit())
}

func TestParse_RejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown tier":   "features:\n  audio_convert:\n    gold: 1\n",
		"negative quota": "features:\n  audio_convert:\n    free: -1\n",
		"garbage quota":  "features:\n  audio_convert:\n    free: lots\n",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input), Default())
			assert.Error(t, err)
		})
	}
}

func TestFileSizeLimits(t *testing.T) {
	assert.Equal(t, int64(10), FileSizeLimitMB(TierFree))
	assert.Equal(t, int64(100), FileSizeLimitMB(TierPremium))
	assert.Equal(t, int64(500), FileSizeLimitMB(TierEnterprise))
	assert.Equal(t, int64(10), FileSizeLimitMB("unknown"))
	assert.Equal(t, int64(100*1024*1024), FileSizeLimitBytes(TierPremium))
}

func TestTierValid(t *testing.T) {
	for _, tier := range Tiers {
		assert.True(t, tier.Valid())
	}

	assert.False(t, Tier("").Valid())
	assert.False(t, Tier("gold").Valid())
}
