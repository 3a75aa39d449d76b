package main

import (
	"context"
	"fmt"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/config"
	"codeberg.org/mediagate/server/internal/events"
	"codeberg.org/mediagate/server/internal/logger"
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

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	table, err := loadLimits(cfg)
	if err != nil {
		return nil, err
	}

	db, err := storage.NewClient(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	var usageStore usage.Store = usage.NewPostgresStore(db.Pool())
	var revoker auth.Revoker
	var redisClient *redis.Client

	// redis is optional: it shares sign-outs across instances and caches counts
	if cfg.RedisURL != "" {
		redisClient, err = newRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, err
		}

		usageStore = usage.NewCachedStore(usageStore, redisClient, usage.DefaultCountTTL)
		revoker = auth.NewRedisRevoker(redisClient)
	} else {
		logger.Warn("REDIS_URL not set, using in-process token revocation and uncached usage counts")
		revoker = auth.NewMemoryRevoker()
	}

	providers, err := auth.InitializeProviders(cfg.BaseURL)
	if err != nil {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		}
		db.Close()
		return nil, fmt.Errorf("failed to initialize OAuth providers: %w", err)
	}

	profileRepo := profiles.NewPostgresStore(db.Pool())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		db:        db,
		redis:     redisClient,
		config:    cfg,
		limits:    table,
		accounts:  accounts.NewService(accounts.NewPostgresStore(db.Pool()), revoker),
		profiles:  profileRepo,
		loader:    profiles.NewLoader(profileRepo, cfg.ProfileLoadTimeout),
		ledger:    usage.NewLedger(usageStore),
		revoker:   revoker,
		processor: features.NewSimulator(features.DefaultStep),
		providers: providers,
		hub:       events.NewHub(),
		inbox:     notifications.New(db.Pool()),
		router:    gin.New(),
	}

	if err := RegisterRoutes(server.router, server); err != nil {
		server.Close()
		return nil, err
	}

	logger.Info("server initialized",
		"oauth_providers", providers,
		"features", len(table.Features()),
		"redis", redisClient != nil,
	)

	return server, nil
}

// releases the database and redis connections
func (s *Server) Close() {
	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	s.db.Close()
}

// loads the limits table. An incomplete table fails startup in development;
// in production it is logged and missing entries deny.
func loadLimits(cfg *config.Config) (*limits.Table, error) {
	table := limits.Default()

	if cfg.LimitsFile != "" {
		loaded, err := limits.LoadFile(cfg.LimitsFile, table)
		if err != nil {
			return nil, fmt.Errorf("failed to load limits: %w", err)
		}

		table = loaded
	}

	if err := table.Validate(limits.Features...); err != nil {
		if !cfg.IsProduction() {
			return nil, fmt.Errorf("invalid limits table: %w", err)
		}

		logger.ErrorErr(err, "limits table is incomplete, affected features will be denied")
	}

	return table, nil
}

func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
