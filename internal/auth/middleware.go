package auth

import (
	"net/http"
	"strings"
	"time"

	"codeberg.org/mediagate/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// context keys set by the middlewares
const (
	ContextUserID       = "user_id"
	ContextUserEmail    = "user_email"
	ContextIsAdmin      = "is_admin"
	ContextTokenID      = "token_id"
	ContextTokenExpires = "token_expires"
)

// validates session tokens and adds user info to context
func AuthMiddleware(revoker Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "authorization header required"})
			c.Abort()
			return
		}

		claims, err := ValidateJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid or expired token"})
			c.Abort()
			return
		}

		if revoked(c, revoker, claims) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "session has been signed out"})
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// validates the token if present but doesn't require it
func OptionalAuthMiddleware(revoker Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := ValidateJWT(token); err == nil && !revoked(c, revoker, claims) {
				setClaims(c, claims)
			}
		}

		c.Next()
	}
}

// rejects callers whose token does not carry the admin flag; use after AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserID)
	return userID, userID != ""
}

// returns the current token id and expiry after AuthMiddleware
func GetTokenID(c *gin.Context) (string, time.Time, bool) {
	tokenID := c.GetString(ContextTokenID)
	return tokenID, c.GetTime(ContextTokenExpires), tokenID != ""
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserEmail, claims.Email)
	c.Set(ContextIsAdmin, claims.IsAdmin)
	c.Set(ContextTokenID, claims.ID)

	if claims.ExpiresAt != nil {
		c.Set(ContextTokenExpires, claims.ExpiresAt.Time)
	}
}

// a failing revocation backend is treated as not revoked so Redis outages don't sign everyone out
func revoked(c *gin.Context, revoker Revoker, claims *Claims) bool {
	if revoker == nil || claims.ID == "" {
		return false
	}

	isRevoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		logger.WarnErr(err, "token revocation check failed", "user_id", claims.UserID)
		return false
	}

	return isRevoked
}

// reads "Authorization: Bearer <token>", or the access_token query parameter
// for websocket upgrades where browsers cannot set headers
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")

	if header == "" {
		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			if token := c.Query("access_token"); token != "" {
				return token, true
			}
		}

		return "", false
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
