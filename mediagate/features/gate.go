package features

import (
	"context"

	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/internal/metrics"
	"codeberg.org/mediagate/server/mediagate/entitlements"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
)

// gate for one already-authenticated user, used on the server where the
// membership is loaded per request
type UserGate struct {
	ledger     *usage.Ledger
	table      *limits.Table
	userID     string
	membership *profiles.Membership
}

// creates a gate for userID; a nil membership denies every feature
func NewUserGate(ledger *usage.Ledger, table *limits.Table, userID string, membership *profiles.Membership) *UserGate {
	return &UserGate{ledger: ledger, table: table, userID: userID, membership: membership}
}

func (g *UserGate) Tier() limits.Tier {
	if g.membership == nil {
		return limits.TierFree
	}

	return g.membership.Tier
}

func (g *UserGate) CheckFeatureAccess(ctx context.Context, feature limits.FeatureKey) (bool, error) {
	result, err := g.Check(ctx, feature)
	if err != nil {
		return false, err
	}

	return result.Allowed, nil
}

// full entitlement view for feature
func (g *UserGate) Check(ctx context.Context, feature limits.FeatureKey) (entitlements.Result, error) {
	if g.userID == "" || g.membership == nil {
		return entitlements.Result{Feature: feature, Reason: entitlements.ReasonNoEntitlement}, nil
	}

	count, err := g.ledger.Count(ctx, g.userID, feature)
	if err != nil {
		return entitlements.Result{}, err
	}

	result := entitlements.Check(g.table, g.membership.Tier, feature, count)

	outcome := "allowed"
	if !result.Allowed {
		outcome = "denied"
	}
	metrics.EntitlementDecisions.WithLabelValues(string(feature), string(g.membership.Tier), outcome).Inc()

	return result, nil
}

func (g *UserGate) LogFeatureUsage(ctx context.Context, feature limits.FeatureKey, label string) error {
	_, err := g.ledger.Log(ctx, g.userID, feature, label)
	return err
}

func (g *UserGate) GetUsageCount(ctx context.Context, feature limits.FeatureKey) int {
	count, err := g.ledger.Count(ctx, g.userID, feature)
	if err != nil {
		logger.WarnErr(err, "failed to refresh usage count", "user_id", g.userID, "feature", feature)
		return 0
	}

	return count
}
