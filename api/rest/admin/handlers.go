package admin

import (
	stderrors "errors"
	"net/http"
	"time"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/errors"
	"codeberg.org/mediagate/server/internal/events"
	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/internal/notifications"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
	"github.com/gin-gonic/gin"
)

// GrantMembership godoc
// @Summary Grant a membership tier
// @Description Admin-only endpoint that replaces a user's active membership and notifies their subscribed clients
// @Tags admin
// @Accept json
// @Produce json
// @Param user_id path string true "User ID (UUID)"
// @Param request body GrantMembershipRequest true "Tier and optional expiry"
// @Success 200 {object} MembershipResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/admin/memberships/{user_id} [put]
// @Security BearerAuth
func GrantMembership(repo profiles.Repository, hub *events.Hub, inbox notifications.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := errors.ValidatePathUUID(c, "user_id")
		if !ok {
			return
		}

		var req GrantMembershipRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if !req.Tier.Valid() {
			errors.BadRequest(c, "unknown tier", nil)
			return
		}

		if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
			errors.BadRequest(c, "expires_at must be in the future", nil)
			return
		}

		ctx := c.Request.Context()

		if _, err := repo.FindProfile(ctx, userID); err != nil {
			if stderrors.Is(err, profiles.ErrNotFound) {
				errors.NotFound(c, "user")
				return
			}

			errors.InternalError(c, "failed to fetch user", err)
			return
		}

		membership, err := repo.GrantMembership(ctx, userID, req.Tier, req.ExpiresAt)
		if err != nil {
			errors.InternalError(c, "failed to grant membership", err)
			return
		}

		grantedBy, _ := auth.GetUserID(c)
		logger.Info("membership granted",
			"user_id", userID,
			"tier", membership.Tier,
			"granted_by", grantedBy,
		)

		if hub != nil {
			payload := events.MembershipChangedPayload{Tier: string(membership.Tier), ExpiresAt: membership.ExpiresAt}
			if err := hub.Publish(userID, events.TypeMembershipChanged, payload); err != nil {
				logger.WarnErr(err, "failed to publish membership change", "user_id", userID)
			}
		}

		if inbox != nil {
			notice := &notifications.CreateRequest{
				UserID: userID,
				Type:   notifications.TypeMembershipChanged,
				Title:  "Membership updated",
				Body:   "Your plan is now " + string(membership.Tier),
				Data:   map[string]any{"tier": string(membership.Tier)},
			}

			if _, err := inbox.Create(ctx, notice); err != nil {
				logger.WarnErr(err, "failed to store membership notification", "user_id", userID)
			}
		}

		c.JSON(http.StatusOK, MembershipResponse{Membership: membership})
	}
}

// GetUserUsage godoc
// @Summary Get any user's usage totals (admin)
// @Description Admin-only endpoint returning per-feature usage counts for a user
// @Tags admin
// @Produce json
// @Param user_id path string true "User ID (UUID)"
// @Success 200 {object} UserUsageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/admin/usage/{user_id} [get]
// @Security BearerAuth
func GetUserUsage(ledger *usage.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := errors.ValidatePathUUID(c, "user_id")
		if !ok {
			return
		}

		counts, err := ledger.CountsByFeature(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to fetch usage", err)
			return
		}

		if counts == nil {
			counts = map[limits.FeatureKey]int{}
		}

		c.JSON(http.StatusOK, UserUsageResponse{UserID: userID, Counts: counts})
	}
}
