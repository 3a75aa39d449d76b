package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/notifications"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *notifications.MemoryStore, string, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	gin.SetMode(gin.TestMode)

	store := notifications.NewMemoryStore()
	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), store, nil)

	userID := uuid.NewString()
	tok, err := auth.GenerateJWT(userID, "u@example.com", false)
	require.NoError(t, err)

	return router, store, userID, "Bearer " + tok
}

func do(router *gin.Engine, method, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	router, store, userID, authz := setup(t)
	ctx := t.Context()

	n, err := store.Create(ctx, &notifications.CreateRequest{
		UserID: userID,
		Type:   notifications.TypeMembershipChanged,
		Title:  "Membership updated",
		Data:   map[string]any{"tier": "premium"},
	})
	require.NoError(t, err)
	_, err = store.Create(ctx, &notifications.CreateRequest{UserID: uuid.NewString(), Type: notifications.TypeMembershipChanged})
	require.NoError(t, err)

	w := do(router, http.MethodGet, "/api/v1/notifications", authz)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, 1, list.UnreadCount)
	assert.Equal(t, "premium", list.Notifications[0].Data["tier"])

	w = do(router, http.MethodPut, "/api/v1/notifications/"+n.ID+"/read", authz)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(router, http.MethodGet, "/api/v1/notifications/unread-count", authz)
	require.Equal(t, http.StatusOK, w.Code)

	var count UnreadCountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &count))
	assert.Zero(t, count.Count)
}

func TestNotifications_MarkAllRead(t *testing.T) {
	router, store, userID, authz := setup(t)

	for range 3 {
		_, err := store.Create(t.Context(), &notifications.CreateRequest{UserID: userID, Type: notifications.TypeMembershipChanged})
		require.NoError(t, err)
	}

	w := do(router, http.MethodPut, "/api/v1/notifications/read-all", authz)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(router, http.MethodGet, "/api/v1/notifications?unread=true", authz)
	require.Equal(t, http.StatusOK, w.Code)

	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Notifications)
}

func TestNotifications_Rejections(t *testing.T) {
	router, _, _, authz := setup(t)

	w := do(router, http.MethodGet, "/api/v1/notifications", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodPut, "/api/v1/notifications/not-a-uuid/read", authz)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
