package config

import "time"

// server configuration resolved from the environment
type Config struct {
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	SessionSecret      string
	Environment        string
	Port               string
	BaseURL            string
	LimitsFile         string
	RateLimit          string
	ProfileLoadTimeout time.Duration
	AllowedOrigins     []string
}

// reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CLI client configuration
type ClientConfig struct {
	Endpoint           string
	SessionFile        string
	ProfileLoadTimeout time.Duration
	RequestsPerSecond  float64
}
