package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"codeberg.org/mediagate/server/internal/events"
	"codeberg.org/mediagate/server/internal/logger"
	"github.com/gorilla/websocket"
)

const (
	pongWait       = 60 * time.Second
	minReconnect   = time.Second
	maxReconnect   = 30 * time.Second
	eventsEndpoint = "/api/v1/auth/events"
)

// follows server-pushed account events for the signed-in user and turns
// membership and profile changes into USER_UPDATED session events. Returns
// when ctx is done.
func (s *Sessions) Watch(ctx context.Context) {
	backoff := minReconnect

	for ctx.Err() == nil {
		token := s.Token()
		if token == "" {
			if !sleep(ctx, maxReconnect) {
				return
			}
			continue
		}

		err := s.watchOnce(ctx, token)
		if ctx.Err() != nil {
			return
		}

		logger.Debug("event stream closed, reconnecting", "error", err, "in", backoff)

		if !sleep(ctx, backoff) {
			return
		}

		backoff = min(backoff*2, maxReconnect)
	}
}

func (s *Sessions) watchOnce(ctx context.Context, token string) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL(s.api.Endpoint())+eventsEndpoint, header)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close() //nolint:errcheck

	go func() {
		<-ctx.Done()
		conn.Close() //nolint:errcheck,gosec // unblocks the read loop
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(10*time.Second))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec

		var msg events.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("ignoring malformed event", "error", err)
			continue
		}

		switch msg.Type {
		case events.TypeMembershipChanged, events.TypeProfileUpdated:
			s.NotifyUserUpdated()
		case events.TypeServerShutdown:
			return fmt.Errorf("server shutting down")
		}
	}
}

func wsURL(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		return "ws://" + strings.TrimPrefix(endpoint, "http://")
	default:
		return endpoint
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
