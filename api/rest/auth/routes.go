package auth

import (
	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/events"
	"codeberg.org/mediagate/server/mediagate/accounts"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"github.com/gin-gonic/gin"
)

// registers all authentication routes
func RegisterRoutes(
	router *gin.RouterGroup,
	service *accounts.Service,
	loader *profiles.Loader,
	repo profiles.Repository,
	hub *events.Hub,
	revoker auth.Revoker,
	providers []string,
) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", SignUpHandler(service))
		authGroup.POST("/signin", SignInHandler(service))
		authGroup.POST("/signout", auth.AuthMiddleware(revoker), SignOutHandler(service))
		authGroup.GET("/me", auth.AuthMiddleware(revoker), GetCurrentUserHandler(loader))
		authGroup.PUT("/me", auth.AuthMiddleware(revoker), UpdateProfileHandler(repo, hub))
		authGroup.GET("/:provider", BeginAuthHandler(providers))
		authGroup.GET("/:provider/callback", CallbackHandler(service, providers))
	}
}
