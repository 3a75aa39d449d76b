package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codeberg.org/mediagate/server/internal/auth"
	"codeberg.org/mediagate/server/internal/events"
	"codeberg.org/mediagate/server/internal/notifications"
	"codeberg.org/mediagate/server/mediagate/limits"
	"codeberg.org/mediagate/server/mediagate/profiles"
	"codeberg.org/mediagate/server/mediagate/usage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router *gin.Engine
	rows   *profiles.MemoryStore
	ledger *usage.Ledger
	hub    *events.Hub
	inbox  *notifications.MemoryStore
}

func setup(t *testing.T) fixture {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	gin.SetMode(gin.TestMode)

	rows := profiles.NewMemoryStore()
	ledger := usage.NewLedger(usage.NewMemoryStore())
	hub := events.NewHub()
	inbox := notifications.NewMemoryStore()

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), rows, ledger, hub, inbox, nil)
	return fixture{router: router, rows: rows, ledger: ledger, hub: hub, inbox: inbox}
}

func bearer(t *testing.T, admin bool) string {
	t.Helper()

	tok, err := auth.GenerateJWT(uuid.NewString(), "admin@example.com", admin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func put(router *gin.Engine, path, authz, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authz)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGrantMembership(t *testing.T) {
	f := setup(t)
	router, rows := f.router, f.rows
	go f.hub.Run()
	defer f.hub.Shutdown()

	userID := uuid.NewString()
	rows.PutProfile(&profiles.Profile{ID: userID, Email: "u@example.com", Username: "u"})
	rows.AddMembership(&profiles.Membership{UserID: userID, Tier: limits.TierFree, IsActive: true})

	w := put(router, "/api/v1/admin/memberships/"+userID, bearer(t, true), `{"tier":"premium"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp MembershipResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, limits.TierPremium, resp.Membership.Tier)

	active, err := rows.FindActiveMembership(t.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, limits.TierPremium, active.Tier)

	inbox, err := f.inbox.ListForUser(t.Context(), userID, 10, true)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, notifications.TypeMembershipChanged, inbox[0].Type)
	assert.Equal(t, "premium", inbox[0].Data["tier"])
}

func TestGrantMembership_Rejections(t *testing.T) {
	f := setup(t)
	router, rows := f.router, f.rows

	userID := uuid.NewString()
	rows.PutProfile(&profiles.Profile{ID: userID})

	w := put(router, "/api/v1/admin/memberships/"+userID, bearer(t, false), `{"tier":"premium"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = put(router, "/api/v1/admin/memberships/"+userID, bearer(t, true), `{"tier":"gold"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	w = put(router, "/api/v1/admin/memberships/"+userID, bearer(t, true), `{"tier":"premium","expires_at":"`+past+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = put(router, "/api/v1/admin/memberships/"+uuid.NewString(), bearer(t, true), `{"tier":"premium"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserUsage(t *testing.T) {
	f := setup(t)
	router, ledger := f.router, f.ledger

	userID := uuid.NewString()
	_, err := ledger.Log(t.Context(), userID, limits.FeatureImageStamp, "stamp detection")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/usage/"+userID, nil)
	req.Header.Set("Authorization", bearer(t, true))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp UserUsageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Counts[limits.FeatureImageStamp])
}
