package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-economy-api/internal/handler"
	"guild-economy-api/internal/middleware"
	"guild-economy-api/internal/repository"
	"guild-economy-api/internal/service"
	"guild-economy-api/pkg/logger"
)

const apiKey = "test-key"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Total int `json:"total"`
	} `json:"meta"`
	Error *struct {
		Code   string          `json:"code"`
		Reason string          `json:"reason"`
		Data   json.RawMessage `json:"data"`
	} `json:"error"`
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	log := logger.Discard()
	eco, err := service.NewEconomy(repository.NewMemoryGuildRepository("economy"), service.Options{
		Rewards: service.RewardsConfig{Daily: 150, Weekly: 1050, WorkMin: 100, WorkMax: 100},
		Logger:  log,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eco.Close() })

	return New(Config{
		Handler:        handler.New(eco, "guild-economy", "test"),
		EconomyHandler: handler.NewEconomyHandler(eco, log),
		AdminHandler:   handler.NewAdminHandler(eco.Store, service.NewMaintenanceScheduler(eco, "", log), "memory"),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthConfig{APIKeys: []string{apiKey}}),
		Logger:         log,
	})
}

func call(t *testing.T, h http.Handler, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", apiKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func amount(n int64) map[string]int64 {
	return map[string]int64{"amount": n}
}

func TestPublicRoutes(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{"/api/status", "/api/v1/health", "/api/v1/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAuthRequired(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/guilds/g1/leaderboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBalanceRoutes(t *testing.T) {
	h := newTestServer(t)
	base := "/api/v1/guilds/g1/users/u1"

	code, env := call(t, h, http.MethodPost, base+"/balance/add", amount(100))
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"amount":100,"balance":{"before":0,"after":100}}`, string(env.Data))

	code, env = call(t, h, http.MethodPost, base+"/balance/subtract", amount(500))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INSUFFICIENT_FUNDS", env.Error.Code)

	code, _ = call(t, h, http.MethodPost, base+"/balance/add", amount(-1))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, h, http.MethodPost, base+"/balance/add", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code, "amount is required")

	code, _ = call(t, h, http.MethodPost, base+"/balance/multiply", amount(2))
	assert.Equal(t, http.StatusNotFound, code)

	code, env = call(t, h, http.MethodPost, base+"/deposit", amount(40))
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"amount":40,"balance":{"before":100,"after":60},"bank":{"before":0,"after":40}}`, string(env.Data))

	code, _ = call(t, h, http.MethodPost, base+"/bank/set", amount(7))
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, h, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"userID":"u1","balance":60,"bank":7,"inventory":0}`, string(env.Data))
}

func TestRewardRoutes(t *testing.T) {
	h := newTestServer(t)
	base := "/api/v1/guilds/g1/users/u1/rewards"

	code, env := call(t, h, http.MethodPost, base+"/daily", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"amount":150,"balance":{"before":0,"after":150}}`, string(env.Data))

	code, env = call(t, h, http.MethodPost, base+"/daily", nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "COOLDOWN_ACTIVE", env.Error.Code)
	assert.NotEmpty(t, env.Error.Data)

	code, env = call(t, h, http.MethodGet, base+"/daily", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"eligible":false`)

	code, _ = call(t, h, http.MethodPost, base+"/monthly", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestShopAndInventoryRoutes(t *testing.T) {
	h := newTestServer(t)
	guild := "/api/v1/guilds/g1"
	user := guild + "/users/u1"

	code, env := call(t, h, http.MethodGet, guild+"/shop", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "SHOP_EMPTY", env.Error.Reason)

	code, env = call(t, h, http.MethodPost, guild+"/shop", map[string]interface{}{"name": "Sword", "cost": 50})
	require.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `{"id":1,"name":"Sword","cost":50}`, string(env.Data))

	code, env = call(t, h, http.MethodPatch, guild+"/shop/1", map[string]interface{}{"cost": 60})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":1,"name":"Sword","cost":60}`, string(env.Data))

	code, _ = call(t, h, http.MethodPost, user+"/inventory/1/buy", nil)
	assert.Equal(t, http.StatusConflict, code)

	call(t, h, http.MethodPost, user+"/balance/add", amount(100))
	code, _ = call(t, h, http.MethodPost, user+"/inventory/1/buy", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, h, http.MethodGet, user+"/inventory", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Meta.Total)

	code, _ = call(t, h, http.MethodGet, user+"/inventory/1", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, h, http.MethodPost, user+"/inventory/1/use", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, h, http.MethodPost, user+"/inventory/1/sell", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "EMPTY_INVENTORY", env.Error.Reason)

	code, _ = call(t, h, http.MethodGet, guild+"/shop/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, h, http.MethodDelete, guild+"/shop/1", nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = call(t, h, http.MethodGet, guild+"/shop/1", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHistoryAndLeaderboardRoutes(t *testing.T) {
	h := newTestServer(t)
	guild := "/api/v1/guilds/g1"

	code, env := call(t, h, http.MethodGet, guild+"/leaderboard", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "EMPTY_LEADERBOARD", env.Error.Reason)

	call(t, h, http.MethodPost, guild+"/users/u1/balance/add", amount(5))
	call(t, h, http.MethodPost, guild+"/users/u2/balance/add", amount(9))

	code, env = call(t, h, http.MethodGet, guild+"/leaderboard?limit=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, env.Meta.Total)
	assert.JSONEq(t, `[{"userID":"u2","balance":9,"bank":0,"rank":1}]`, string(env.Data))

	code, env = call(t, h, http.MethodGet, guild+"/users/u1/history", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, env.Meta.Total)

	code, env = call(t, h, http.MethodDelete, guild+"/users/u1/history/1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, env.Meta.Total)

	code, env = call(t, h, http.MethodDelete, guild+"/users/u1/history/1", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "EMPTY_HISTORY", env.Error.Reason)
}

func TestAdminRoutes(t *testing.T) {
	h := newTestServer(t)

	code, env := call(t, h, http.MethodGet, "/api/v1/admin/stats", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"store_type":"memory"`)

	code, env = call(t, h, http.MethodPost, "/api/v1/admin/normalize", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"normalized":0}`, string(env.Data))
}
