package notifications

import (
	"net/http"
	"strconv"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/errors"
	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/internal/notifications"
	"github.com/gin-gonic/gin"
)

// ListHandler godoc
// @Summary List notifications
// @Description Returns the caller's notifications, newest first
// @Tags notifications
// @Produce json
// @Param limit query int false "Max results (1-100, default 50)"
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} ListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/notifications [get]
// @Security BearerAuth
func ListHandler(store notifications.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "authentication required")
			return
		}

		limit := defaultListLimit
		if l := c.Query("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxListLimit {
				limit = parsed
			}
		}

		ctx := c.Request.Context()
		unreadOnly := c.Query("unread") == "true"

		notifs, err := store.ListForUser(ctx, userID, limit, unreadOnly)
		if err != nil {
			errors.InternalError(c, "failed to fetch notifications", err)
			return
		}

		unreadCount, err := store.GetUnreadCount(ctx, userID)
		if err != nil {
			logger.WarnErr(err, "failed to count unread notifications", "user_id", userID)
			unreadCount = 0
		}

		response := make([]NotificationResponse, 0, len(notifs))
		for _, n := range notifs {
			response = append(response, NotificationResponse{
				ID:        n.ID,
				Type:      n.Type,
				Title:     n.Title,
				Body:      n.Body,
				Data:      n.Data,
				Read:      n.Read,
				CreatedAt: n.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, ListResponse{
			Notifications: response,
			UnreadCount:   unreadCount,
		})
	}
}

// MarkReadHandler godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Param id path string true "Notification ID (UUID)"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/notifications/{id}/read [put]
// @Security BearerAuth
func MarkReadHandler(store notifications.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "authentication required")
			return
		}

		notificationID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		if err := store.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
			errors.InternalError(c, "failed to mark notification as read", err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// MarkAllReadHandler godoc
// @Summary Mark all notifications as read
// @Tags notifications
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/notifications/read-all [put]
// @Security BearerAuth
func MarkAllReadHandler(store notifications.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "authentication required")
			return
		}

		if err := store.MarkAllRead(c.Request.Context(), userID); err != nil {
			errors.InternalError(c, "failed to mark notifications as read", err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// UnreadCountHandler godoc
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} UnreadCountResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/notifications/unread-count [get]
// @Security BearerAuth
func UnreadCountHandler(store notifications.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "authentication required")
			return
		}

		count, err := store.GetUnreadCount(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to get unread count", err)
			return
		}

		c.JSON(http.StatusOK, UnreadCountResponse{Count: count})
	}
}
