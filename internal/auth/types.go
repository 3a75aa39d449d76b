package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// session token claims
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// tracks signed-out tokens until they would have expired anyway
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
