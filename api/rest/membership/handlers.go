package membership

import (
	"net/http"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/errors"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/gin-gonic/gin"
)

// GetActiveMembership godoc
// @Summary Get the active membership
// @Description Returns the most recently created active membership for a user, or null. Callers may read their own; admins may read any.
// @Tags membership
// @Produce json
// @Param user_id query string true "User ID (UUID)"
// @Success 200 {object} MembershipResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/memberships/active [get]
// @Security BearerAuth
func GetActiveMembership(store profiles.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		target := c.Query("user_id")
		if !errors.IsValidUUID(target) {
			errors.BadRequest(c, "user_id must be a valid UUID", nil)
			return
		}

		userID, _ := auth.GetUserID(c)
		if target != userID && !c.GetBool(auth.ContextIsAdmin) {
			errors.Forbidden(c, "")
			return
		}

		membership, err := store.FindActiveMembership(c.Request.Context(), target)
		if err != nil {
			errors.InternalError(c, "failed to fetch membership", err)
			return
		}

		c.JSON(http.StatusOK, MembershipResponse{Membership: membership})
	}
}

// ListPlans godoc
// @Summary List membership plans
// @Description Returns every tier with its price, benefits, file size ceiling and per-feature quotas. Unlimited quotas are the string "unlimited".
// @Tags membership
// @Produce json
// @Success 200 {object} PlansResponse
// @Router /api/v1/membership/plans [get]
func ListPlans(table *limits.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, PlansResponse{Plans: BuildPlans(table)})
	}
}

// Upgrade godoc
// @Summary Upgrade membership
// @Description Payment processing is not available; tiers are granted by an administrator
// @Tags membership
// @Accept json
// @Produce json
// @Param request body UpgradeRequest true "Requested tier"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 501 {object} errors.ErrorResponse
// @Router /api/v1/membership/upgrade [post]
// @Security BearerAuth
func Upgrade() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpgradeRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if !req.Tier.Valid() {
			errors.BadRequest(c, "unknown tier", nil)
			return
		}

		errors.NotImplemented(c, "online upgrades are not available yet, contact support to change your plan")
	}
}

// one plan per tier in ascending order, with the quota for every configured feature
func BuildPlans(table *limits.Table) []Plan {
	tiers := []limits.Tier{limits.TierFree, limits.TierPremium, limits.TierEnterprise}
	plans := make([]Plan, 0, len(tiers))

	for _, tier := range tiers {
		quotas := make(map[limits.FeatureKey]limits.Quota)

		for _, feature := range table.Features() {
			if q, ok := table.Lookup(feature, tier); ok {
				quotas[feature] = q
			}
		}

		plans = append(plans, Plan{
			Tier:            tier,
			Name:            limits.DisplayName(tier),
			Price:           limits.Price(tier),
			Benefits:        limits.Benefits(tier),
			FileSizeLimitMB: limits.FileSizeLimitMB(tier),
			Limits:          quotas,
		})
	}

	return plans
}
