package notifications

import (
	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/notifications"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, store notifications.Store, revoker auth.Revoker) {
	group := router.Group("/notifications")
	group.Use(auth.AuthMiddleware(revoker))

	group.GET("", ListHandler(store))
	group.GET("/unread-count", UnreadCountHandler(store))
	group.PUT("/read-all", MarkAllReadHandler(store))
	group.PUT("/:id/read", MarkReadHandler(store))
}
