package usage

import (
	"net/http"

	"codeberg.org/mediagate/server/api/rest/pagination"
	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/errors"
	"codeberg.org/mediagate/server/mediagate/features"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
	"github.com/gin-gonic/gin"
)

// GetUsage godoc
// @Summary Get user's usage statistics
// @Description Returns the caller's tier, the entitlement for every feature and 30 days of usage history
// @Tags usage
// @Produce json
// @Success 200 {object} SummaryResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/usage [get]
// @Security BearerAuth
func GetUsage(ledger *usage.Ledger, table *limits.Table, store profiles.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		ctx := c.Request.Context()

		membership, err := store.FindActiveMembership(ctx, userID)
		if err != nil {
			errors.InternalError(c, "failed to fetch membership", err)
			return
		}

		gate := features.NewUserGate(ledger, table, userID, membership)
		response := SummaryResponse{Tier: gate.Tier()}

		for _, feature := range table.Features() {
			result, err := gate.Check(ctx, feature)
			if err != nil {
				errors.InternalError(c, "failed to fetch usage data", err)
				return
			}

			result.Tier = gate.Tier()
			response.Features = append(response.Features, result)
		}

		history, err := ledger.History(ctx, userID, historyDays)
		if err != nil {
			errors.InternalError(c, "failed to fetch usage history", err)
			return
		}

		if history == nil {
			history = []usage.DailyUsage{}
		}

		response.History = history
		c.JSON(http.StatusOK, response)
	}
}

// GetUsageCount godoc
// @Summary Count uses of a feature
// @Description Returns how many times the caller has used the feature
// @Tags usage
// @Produce json
// @Param feature query string true "Feature key"
// @Success 200 {object} CountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/usage/count [get]
// @Security BearerAuth
func GetUsageCount(ledger *usage.Ledger, table *limits.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		feature := limits.FeatureKey(c.Query("feature"))
		if !table.Has(feature) {
			errors.BadRequest(c, "unknown feature", nil)
			return
		}

		count, err := ledger.Count(c.Request.Context(), userID, feature)
		if err != nil {
			errors.InternalError(c, "failed to count usage", err)
			return
		}

		c.JSON(http.StatusOK, CountResponse{Feature: feature, Count: count})
	}
}

// LogUsage godoc
// @Summary Record a feature use
// @Description Appends one usage entry for the caller. Entries are never updated or deleted.
// @Tags usage
// @Accept json
// @Produce json
// @Param request body LogUsageRequest true "Usage entry"
// @Success 201 {object} EntryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/usage [post]
// @Security BearerAuth
func LogUsage(ledger *usage.Ledger, table *limits.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		var req LogUsageRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if !table.Has(req.FeatureType) {
			errors.BadRequest(c, "unknown feature", nil)
			return
		}

		label := req.FeatureName
		if label == "" {
			label = features.Label(req.FeatureType)
		}

		entry, err := ledger.Log(c.Request.Context(), userID, req.FeatureType, label)
		if err != nil {
			errors.InternalError(c, "failed to record usage", err)
			return
		}

		c.JSON(http.StatusCreated, EntryResponse{Entry: entry})
	}
}

// ListEntries godoc
// @Summary List usage entries
// @Description Returns the caller's usage entries, newest first
// @Tags usage
// @Produce json
// @Param limit query int false "Page size (max 100)" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} EntriesResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/usage/entries [get]
// @Security BearerAuth
func ListEntries(ledger *usage.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		params := pagination.FromQuery(c, 20, 100)

		entries, total, err := ledger.Entries(c.Request.Context(), userID, params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to list usage", err)
			return
		}

		c.JSON(http.StatusOK, EntriesResponse{
			Entries:    entries,
			Pagination: pagination.NewMeta(params, total),
		})
	}
}
