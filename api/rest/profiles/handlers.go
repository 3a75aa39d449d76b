package profiles

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/errors"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/gin-gonic/gin"
)

type ProfileResponse struct {
	Profile *profiles.Profile `json:"profile"`
}

// GetProfile godoc
// @Summary Get a profile
// @Description Returns the profile for a user. Callers may read their own profile; admins may read any.
// @Tags profiles
// @Produce json
// @Param id path string true "User ID (UUID)"
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/profiles/{id} [get]
// @Security BearerAuth
func GetProfile(store profiles.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		userID, _ := auth.GetUserID(c)
		if id != userID && !c.GetBool(auth.ContextIsAdmin) {
			errors.Forbidden(c, "")
			return
		}

		profile, err := store.FindProfile(c.Request.Context(), id)
		if stderrors.Is(err, profiles.ErrNotFound) {
			errors.NotFound(c, "profile")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to fetch profile", err)
			return
		}

		c.JSON(http.StatusOK, ProfileResponse{Profile: profile})
	}
}

func RegisterRoutes(rg *gin.RouterGroup, store profiles.Store, revoker auth.Revoker) {
	rg.GET("/profiles/:id", auth.AuthMiddleware(revoker), GetProfile(store))
}
