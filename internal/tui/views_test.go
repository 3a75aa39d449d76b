package tui

import (
	"bytes"
	"context"
	"testing"

	"codeberg.org/mediagate/server/internal/client"
	"codeberg.org/mediagate/server/mediagate/entitlements"
	"codeberg.org/mediagate/server/mediagate/features"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderUsage(t *testing.T) {
	table := limits.Default()
	results := []entitlements.Result{
		entitlements.Check(table, limits.TierFree, limits.FeatureAudioConvert, 0),
		entitlements.Check(table, limits.TierFree, limits.FeatureVideoConvert, 1),
		entitlements.Check(table, limits.TierFree, "pdf_merge", 0),
	}

	out := RenderUsage(limits.TierFree, results)

	assert.Contains(t, out, "audio conversion")
	assert.Contains(t, out, "0/1 used")
	assert.Contains(t, out, "upgrade to continue")
	assert.Contains(t, out, "not included")
}

func TestRenderPlans(t *testing.T) {
	plans := []client.Plan{{
		Tier:            limits.TierPremium,
		Name:            limits.DisplayName(limits.TierPremium),
		Price:           limits.Price(limits.TierPremium),
		Benefits:        limits.Benefits(limits.TierPremium),
		FileSizeLimitMB: limits.FileSizeLimitMB(limits.TierPremium),
		Limits:          map[limits.FeatureKey]limits.Quota{limits.FeatureAudioConvert: limits.Unlimited()},
	}}

	out, err := RenderPlans(plans, limits.TierPremium)
	require.NoError(t, err)
	assert.Contains(t, out, limits.DisplayName(limits.TierPremium))
	assert.Contains(t, out, "current")
	assert.Contains(t, out, "unlimited")
}

func TestRenderProfile(t *testing.T) {
	assert.Contains(t, RenderProfile(nil, nil), "not available")

	out := RenderProfile(&profiles.Profile{Username: "ana", Email: "ana@example.com"}, nil)
	assert.Contains(t, out, "ana@example.com")
	assert.Contains(t, out, "10 MB")
}

func TestRunWithProgress_PlainOutput(t *testing.T) {
	var buf bytes.Buffer

	outcome, err := RunWithProgress(context.Background(), &buf, "converting", func(_ context.Context, progress features.ProgressFunc) (*features.Outcome, error) {
		progress(50)
		progress(100)
		return &features.Outcome{Output: features.Output{FileName: "a.mp3"}}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "a.mp3", outcome.Output.FileName)
	assert.Contains(t, buf.String(), "converting: 100%")
}
