package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*httptest.Server, *events.Hub) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	gin.SetMode(gin.TestMode)

	hub := events.NewHub()
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), hub, NewUpgrader(false, nil), nil)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, hub
}

func TestEventsHandler_DeliversMembershipChange(t *testing.T) {
	srv, hub := newServer(t)

	userID := uuid.NewString()
	tok, err := auth.GenerateJWT(userID, "u@example.com", false)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/auth/events?access_token=" + tok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var greeting events.Message
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, events.TypeConnected, greeting.Type)

	require.NoError(t, hub.Publish(userID, events.TypeMembershipChanged, events.MembershipChangedPayload{Tier: "premium"}))

	var msg events.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, events.TypeMembershipChanged, msg.Type)
	assert.Contains(t, string(msg.Payload), "premium")
}

func TestEventsHandler_RequiresAuth(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/auth/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
