package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaadly/vaadly/internal/cache/memory"
	"github.com/vaadly/vaadly/internal/config"
	"github.com/vaadly/vaadly/internal/identity"
	"github.com/vaadly/vaadly/internal/offline"
	"github.com/vaadly/vaadly/internal/store"
	"github.com/vaadly/vaadly/internal/store/sqlite"
)

type testEnv struct {
	srv       *httptest.Server
	admin     string // admin bearer token
	partyRepo identity.PartyRepo
	auth      *identity.UserAuth
}

func newTestEnv(t *testing.T, tweaks ...func(*config.Config)) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.Default()

	driver, err := sqlite.New(&store.DriverConfig{Driver: "sqlite", DataDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, driver.Init(ctx))
	t.Cleanup(func() { _ = driver.Close() })

	off, err := offline.Open(ctx, filepath.Join(t.TempDir(), "offline.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = off.Close() })

	partyRepo := identity.NewMemoryPartyRepo()
	sessionRepo := identity.NewMemorySessionRepo()
	auth := identity.NewUserAuth(4) // low bcrypt cost keeps tests fast

	hash, err := auth.HashPassword("admin-secret")
	require.NoError(t, err)
	require.NoError(t, partyRepo.Create(ctx, &identity.User{
		ID:           uuid.NewString(),
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: hash,
		Role:         identity.RoleAdmin,
		CreatedAt:    time.Now(),
	}))

	cfg := config.DevConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	for _, tweak := range tweaks {
		tweak(cfg)
	}

	s, err := New(cfg, logger, &Deps{
		PartyRepo:   partyRepo,
		SessionRepo: sessionRepo,
		UserAuth:    auth,
		Store:       driver,
		Cache:       memory.New(),
		Offline:     off,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	env := &testEnv{srv: srv, partyRepo: partyRepo, auth: auth}
	env.admin = env.login(t, "admin", "admin-secret")
	return env
}

// seedUser creates a user with the given role and returns a bearer token.
func (e *testEnv) seedUser(t *testing.T, username, role string) string {
	t.Helper()

	hash, err := e.auth.HashPassword("pw-" + username)
	require.NoError(t, err)
	require.NoError(t, e.partyRepo.Create(context.Background(), &identity.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}))
	return e.login(t, username, "pw-"+username)
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.True(t, env.Success)
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
}

func TestHealthzIsPublic(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/healthz", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/events", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEventQuoteBadgeFlow(t *testing.T) {
	env := newTestEnv(t)

	var event store.Event
	resp := env.do(t, http.MethodPost, "/api/events", env.admin, map[string]any{
		"title":     "Prom 2026",
		"category":  "prom",
		"starts_at": time.Now().Add(30 * 24 * time.Hour).Unix(),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeData(t, resp, &event)

	quotes := []map[string]any{
		{"vendor_name": "DJ Alon", "category": "dj", "total_price": 3000, "rating": 5},
		{"vendor_name": "DJ Maya", "category": "dj", "total_price": 2500, "rating": 3},
		{"vendor_name": "DJ Omer", "category": "dj", "total_price": 2500},
	}
	for _, q := range quotes {
		resp := env.do(t, http.MethodPost, "/api/events/"+event.ID+"/quotes", env.admin, q)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	var views []struct {
		VendorName string `json:"vendor_name"`
		Badges     struct {
			Cheapest     bool `json:"cheapest"`
			HighestRated bool `json:"highest_rated"`
			BestValue    bool `json:"best_value"`
		} `json:"badges"`
	}
	resp = env.do(t, http.MethodGet, "/api/events/"+event.ID+"/quotes", env.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &views)
	require.Len(t, views, 3)

	byVendor := map[string]struct {
		Cheapest, HighestRated, BestValue bool
	}{}
	for _, v := range views {
		byVendor[v.VendorName] = struct {
			Cheapest, HighestRated, BestValue bool
		}{v.Badges.Cheapest, v.Badges.HighestRated, v.Badges.BestValue}
	}

	assert.Equal(t, struct {
		Cheapest, HighestRated, BestValue bool
	}{false, true, false}, byVendor["DJ Alon"])
	assert.True(t, byVendor["DJ Maya"].Cheapest)
	assert.True(t, byVendor["DJ Omer"].Cheapest)
	assert.False(t, byVendor["DJ Maya"].HighestRated)
}

func TestMemberCannotWrite(t *testing.T) {
	env := newTestEnv(t)
	member := env.seedUser(t, "parent", identity.RoleMember)

	resp := env.do(t, http.MethodPost, "/api/events", member, map[string]any{
		"title":     "Unauthorized write",
		"starts_at": 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Reads are open to all members.
	resp = env.do(t, http.MethodGet, "/api/events", member, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Editors can write.
	editor := env.seedUser(t, "chair", identity.RoleEditor)
	resp = env.do(t, http.MethodPost, "/api/events", editor, map[string]any{
		"title":     "Editor write",
		"starts_at": 1,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestValidationErrorNamesField(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/events", env.admin, map[string]any{
		"starts_at": 1,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Message string `json:"message"`
			Field   string `json:"field"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "title", body.Error.Field)
}

func TestSyncQueueRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	var created struct {
		ID int64 `json:"id"`
	}
	resp := env.do(t, http.MethodPost, "/api/sync/queue", env.admin, map[string]any{
		"url":     "/api/tasks",
		"method":  "POST",
		"payload": map[string]string{"title": "queued offline"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeData(t, resp, &created)
	require.NotZero(t, created.ID)

	var pending []offline.PendingMutation
	resp = env.do(t, http.MethodGet, "/api/sync/queue", env.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, "/api/tasks", pending[0].URL)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/sync/queue/%d", created.ID), env.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestPushDispatchRespectsConfigToggle(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.Push.Enabled = false })

	resp := env.do(t, http.MethodPost, "/api/push/dispatch", env.admin, map[string]any{
		"title": "Meeting tonight",
		"body":  "Gym hall, 19:30",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestExpenseSummary(t *testing.T) {
	env := newTestEnv(t)

	entries := []map[string]any{
		{"description": "Bake sale income", "amount": 50000, "type": "income", "occurred_at": 1},
		{"description": "Decorations", "amount": 12000, "type": "expense", "occurred_at": 2},
	}
	for _, e := range entries {
		resp := env.do(t, http.MethodPost, "/api/expenses", env.admin, e)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	var summary struct {
		TotalIncome  int64 `json:"total_income"`
		TotalExpense int64 `json:"total_expense"`
		Balance      int64 `json:"balance"`
		EntryCount   int   `json:"entry_count"`
	}
	resp := env.do(t, http.MethodGet, "/api/expenses/summary", env.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, resp, &summary)

	assert.Equal(t, int64(50000), summary.TotalIncome)
	assert.Equal(t, int64(12000), summary.TotalExpense)
	assert.Equal(t, int64(38000), summary.Balance)
	assert.Equal(t, 2, summary.EntryCount)
}
