package process

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/errors"
	"codeberg.org/mediagate/server/mediagate/features"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
	"github.com/gin-gonic/gin"
)

// RunFeature godoc
// @Summary Run a gated media action
// @Description Checks the caller's entitlement, processes the file and records one use. A completed job whose use could not be recorded is returned with unmetered set.
// @Tags process
// @Accept json
// @Produce json
// @Param feature path string true "Feature key"
// @Param request body features.Job true "Job description"
// @Success 200 {object} features.Outcome
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/process/{feature} [post]
// @Security BearerAuth
func RunFeature(ledger *usage.Ledger, table *limits.Table, store profiles.Store, processor features.Processor) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		feature := limits.FeatureKey(c.Param("feature"))
		if !table.Has(feature) {
			errors.NotFound(c, "feature")
			return
		}

		var job features.Job
		if err := c.ShouldBindJSON(&job); err != nil {
			errors.ValidationError(c, err)
			return
		}

		// the path decides the feature
		job.Feature = feature
		ctx := c.Request.Context()

		membership, err := store.FindActiveMembership(ctx, userID)
		if err != nil {
			errors.InternalError(c, "failed to fetch membership", err)
			return
		}

		gate := features.NewUserGate(ledger, table, userID, membership)

		outcome, err := features.NewRunner(gate, processor).Run(ctx, job, nil)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, outcome)
		case stderrors.Is(err, features.ErrNotEntitled):
			errors.QuotaExceeded(c, features.Label(feature))
		case stderrors.Is(err, features.ErrFileTooLarge):
			errors.PayloadTooLarge(c, err.Error())
		case stderrors.Is(err, features.ErrUnsupportedFormat), stderrors.Is(err, features.ErrInvalidJob):
			errors.ValidationError(c, err)
		default:
			errors.InternalError(c, "processing failed", err)
		}
	}
}

func RegisterRoutes(rg *gin.RouterGroup, ledger *usage.Ledger, table *limits.Table, store profiles.Store, processor features.Processor, revoker auth.Revoker) {
	rg.POST("/process/:feature", auth.AuthMiddleware(revoker), RunFeature(ledger, table, store, processor))
}
