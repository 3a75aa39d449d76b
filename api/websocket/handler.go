package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/errors"
	"codeberg.org/mediagate/server/internal/events"
	"codeberg.org/mediagate/server/internal/logger"
)

// creates the upgrader used for event subscriptions
func NewUpgrader(production bool, allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     events.CheckOrigin(production, allowedOrigins),
	}
}

// EventsHandler godoc
// @Summary Subscribe to account events
// @Description Upgrades to a WebSocket that receives membership_changed and profile_updated notifications for the caller
// @Tags auth
// @Param access_token query string false "Session token when the Authorization header cannot be set"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/auth/events [get]
// @Security BearerAuth
func EventsHandler(hub *events.Hub, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		// check connection limits before accepting new connection
		ipAddress := c.ClientIP()
		canAccept, reason := hub.CanAcceptConnection(userID, ipAddress)

		if !canAccept {
			errors.TooManyRequests(c, reason)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"user_id", userID,
				"ip", ipAddress,
			)

			return
		}

		// track IP connection only after successful upgrade
		hub.TrackIPConnection(ipAddress)

		client := events.NewClient(userID, ipAddress, conn, hub)
		if err := hub.Add(client); err != nil {
			conn.Close() //nolint:errcheck,gosec // G104: hub already stopped
			return
		}

		go client.WritePump()
		go client.ReadPump()

		logger.Info("event subscription established",
			"client_id", client.ID,
			"user_id", userID,
			"ip", ipAddress,
		)
	}
}
