package main

import (
	"context"

	"codeberg.org/mediagate/server/api/rest/admin"
	"codeberg.org/mediagate/server/api/rest/auth"
	"codeberg.org/mediagate/server/api/rest/health"
	"codeberg.org/mediagate/server/api/rest/membership"
	"codeberg.org/mediagate/server/api/rest/notifications"
	"codeberg.org/mediagate/server/api/rest/process"
	"codeberg.org/mediagate/server/api/rest/profiles"
	"codeberg.org/mediagate/server/api/rest/usage"
	"codeberg.org/mediagate/server/api/websocket"
	"codeberg.org/mediagate/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	rateLimit, err := RateLimitMiddleware(server)
	if err != nil {
		return err
	}

	router.Use(gin.Recovery(), RequestLogger(), CORSMiddleware(server))

	deps := map[string]health.Pinger{"postgres": server.db}
	if server.redis != nil {
		deps["redis"] = health.PingerFunc(func(ctx context.Context) error {
			return server.redis.Ping(ctx).Err()
		})
	}

	router.GET("/health", health.Handler(deps))
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	v1.Use(rateLimit)

	{
		v1.GET("/ping", health.PingHandler)

		auth.RegisterRoutes(v1, server.accounts, server.loader, server.profiles, server.hub, server.revoker, server.providers)
		profiles.RegisterRoutes(v1, server.profiles, server.revoker)
		membership.RegisterRoutes(v1, server.profiles, server.limits, server.revoker)
		usage.RegisterRoutes(v1, server.ledger, server.limits, server.profiles, server.revoker)
		process.RegisterRoutes(v1, server.ledger, server.limits, server.profiles, server.processor, server.revoker)
		admin.RegisterRoutes(v1, server.profiles, server.ledger, server.hub, server.inbox, server.revoker)
		notifications.RegisterRoutes(v1, server.inbox, server.revoker)
		websocket.RegisterRoutes(v1, server.hub, websocket.NewUpgrader(server.config.IsProduction(), server.config.AllowedOrigins), server.revoker)
	}

	return nil
}
