package main

import (
	"fmt"
	"time"

	"codeberg.org/mediagate/server/internal/errors"
	"codeberg.org/mediagate/server/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// allows the configured origins, or any origin outside production
func CORSMiddleware(server *Server) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if server.config.IsProduction() && len(server.config.AllowedOrigins) > 0 {
		cfg.AllowOrigins = server.config.AllowedOrigins
	} else {
		cfg.AllowOriginFunc = func(string) bool { return true }
	}

	return cors.New(cfg)
}

// per-IP request rate limit, shared across instances when redis is available
func RateLimitMiddleware(server *Server) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(server.config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", server.config.RateLimit, err)
	}

	var store limiter.Store = memory.NewStore()

	if server.redis != nil {
		store, err = sredis.NewStoreWithOptions(server.redis, limiter.StoreOptions{
			Prefix: "mediagate:ratelimit",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit store: %w", err)
		}
	}

	return mgin.NewMiddleware(
		limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// a broken limiter store must not take the API down
			logger.WarnErr(err, "rate limiter unavailable")
			c.Next()
		}),
	), nil
}

// structured request log
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"user_id", c.GetString("user_id"),
		)
	}
}
