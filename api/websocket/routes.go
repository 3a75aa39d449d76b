package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/events"
)

func RegisterRoutes(router *gin.RouterGroup, hub *events.Hub, upgrader *websocket.Upgrader, revoker auth.Revoker) {
	router.GET("/auth/events", auth.AuthMiddleware(revoker), EventsHandler(hub, upgrader))
}
