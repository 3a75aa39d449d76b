package events

import (
	"net/http"
	"slices"

	"codeberg.org/mediagate/server/internal/logger"
)

// returns an origin check: permissive outside production, allow-list in production
func CheckOrigin(production bool, allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if !production {
			return true
		}

		origin := r.Header.Get("Origin")

		// non-browser clients such as the CLI send no origin
		if origin == "" {
			return true
		}

		if slices.Contains(allowed, origin) {
			return true
		}

		logger.Warn("websocket origin rejected", "origin", origin)
		return false
	}
}
