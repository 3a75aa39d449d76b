package main

import (
	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/config"
	"codeberg.org/mediagate/server/internal/events"
	"codeberg.org/mediagate/server/internal/notifications"
	"codeberg.org/mediagate/server/internal/storage"
	"codeberg.org/mediagate/server/mediagate/accounts"
	"codeberg.org/mediagate/server/mediagate/features"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	db        *storage.Client
	redis     *redis.Client
	config    *config.Config
	limits    *limits.Table
	accounts  *accounts.Service
	profiles  profiles.Repository
	loader    *profiles.Loader
	ledger    *usage.Ledger
	revoker   auth.Revoker
	processor features.Processor
	providers []string
	hub       *events.Hub
	inbox     notifications.Store
	router    *gin.Engine
}
