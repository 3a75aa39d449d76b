package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort               = "8080"
	defaultBaseURL            = "http://localhost:8080"
	defaultRateLimit          = "120-M"
	defaultProfileLoadTimeout = 5 * time.Second
	defaultClientRPS          = 5
)

// loads server configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	databaseURL := os.Getenv("DATABASE_URL")
	jwtSecret := os.Getenv("JWT_SECRET")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	timeout, err := durationEnv("PROFILE_LOAD_TIMEOUT", defaultProfileLoadTimeout)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:        databaseURL,
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          jwtSecret,
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		Environment:        stringEnv("ENVIRONMENT", "development"),
		Port:               stringEnv("PORT", defaultPort),
		BaseURL:            stringEnv("BASE_URL", defaultBaseURL),
		LimitsFile:         os.Getenv("LIMITS_FILE"),
		RateLimit:          stringEnv("RATE_LIMIT", defaultRateLimit),
		ProfileLoadTimeout: timeout,
		AllowedOrigins:     listEnv("ALLOWED_ORIGINS"),
	}, nil
}

// loads CLI configuration; nothing is required
func LoadClientConfig() (*ClientConfig, error) {
	if err := godotenv.Load(); err != nil {
		_ = err
	}

	timeout, err := durationEnv("MEDIAGATE_PROFILE_TIMEOUT", defaultProfileLoadTimeout)
	if err != nil {
		return nil, err
	}

	sessionFile := os.Getenv("MEDIAGATE_SESSION_FILE")
	if sessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}

		sessionFile = filepath.Join(dir, "mediagate", "session.json")
	}

	rps := float64(defaultClientRPS)
	if raw := os.Getenv("MEDIAGATE_RPS"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("MEDIAGATE_RPS must be a positive number")
		}

		rps = parsed
	}

	return &ClientConfig{
		Endpoint:           strings.TrimRight(stringEnv("MEDIAGATE_API_ENDPOINT", defaultBaseURL), "/"),
		SessionFile:        sessionFile,
		ProfileLoadTimeout: timeout,
		RequestsPerSecond:  rps,
	}, nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration (e.g. 5s)", key)
	}

	return d, nil
}

func listEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
