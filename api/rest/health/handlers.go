package health

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/mediagate/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Handler godoc
// @Summary Health check
// @Description Reports server health and the reachability of its backing stores
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func Handler(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		response := Response{Status: "healthy", Service: service, Version: version}

		if len(deps) > 0 {
			response.Checks = make(map[string]string, len(deps))
		}

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				logger.WarnErr(err, "health check failed", "dependency", name)
				response.Checks[name] = "unreachable"
				response.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}

			response.Checks[name] = "ok"
		}

		c.JSON(status, response)
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
