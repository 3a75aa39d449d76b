package admin

import (
	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/events"
	"codeberg.org/mediagate/server/internal/notifications"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, repo profiles.Repository, ledger *usage.Ledger, hub *events.Hub, inbox notifications.Store, revoker auth.Revoker) {
	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(revoker), auth.AdminMiddleware())

	admin.PUT("/memberships/:user_id", GrantMembership(repo, hub, inbox))
	admin.GET("/usage/:user_id", GetUserUsage(ledger))
}
