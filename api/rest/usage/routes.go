package usage

import (
	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup, ledger *usage.Ledger, table *limits.Table, store profiles.Store, revoker auth.Revoker) {
	group := rg.Group("/usage")
	group.Use(auth.AuthMiddleware(revoker)) // all usage routes require authentication

	group.GET("", GetUsage(ledger, table, store))
	group.GET("/count", GetUsageCount(ledger, table))
	group.GET("/entries", ListEntries(ledger))
	group.POST("", LogUsage(ledger, table))
}
