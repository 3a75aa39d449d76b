package membership

import (
	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, store profiles.Store, table *limits.Table, revoker auth.Revoker) {
	rg.GET("/memberships/active", auth.AuthMiddleware(revoker), GetActiveMembership(store))

	group := rg.Group("/membership")
	{
		group.GET("/plans", ListPlans(table))
		group.POST("/upgrade", auth.AuthMiddleware(revoker), Upgrade())
	}
}
