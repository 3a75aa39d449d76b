package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/mediagate/server/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	server := &Server{config: &config.Config{RateLimit: "2-M"}}
	rateLimit, err := RateLimitMiddleware(server)
	require.NoError(t, err)

	router := gin.New()
	router.Use(rateLimit)
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitMiddleware_InvalidRate(t *testing.T) {
	server := &Server{config: &config.Config{RateLimit: "lots"}}

	_, err := RateLimitMiddleware(server)
	assert.Error(t, err)
}

func TestCORSMiddleware_Production(t *testing.T) {
	gin.SetMode(gin.TestMode)

	server := &Server{config: &config.Config{
		Environment:    "production",
		AllowedOrigins: []string{"https://app.mediagate.dev"},
	}}

	router := gin.New()
	router.Use(CORSMiddleware(server))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.mediagate.dev")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://app.mediagate.dev", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoadLimits(t *testing.T) {
	table, err := loadLimits(&config.Config{})
	require.NoError(t, err)
	assert.NotEmpty(t, table.Features())

	_, err = loadLimits(&config.Config{LimitsFile: "does-not-exist.yaml"})
	assert.Error(t, err)
}
