package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netauto/internal/bootstrap"
	"netauto/internal/config"
	"netauto/internal/logger"
)

func newTestRouter(t *testing.T, authEnabled bool) *gin.Engine {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	cfg, err := config.Load()
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.App.GinMode = gin.TestMode
	cfg.Auth.Enabled = authEnabled
	cfg.Auth.JWTSecret = "router-secret"
	cfg.Database.Driver = "sqlite"
	cfg.SQLite.Path = ":memory:"
	cfg.Redis.Addr = ""
	cfg.RabbitMQ.URL = ""
	cfg.VectorStore.Backend = "memory"
	cfg.VectorStore.PersistDirectory = filepath.Join(dir, "vectors")
	cfg.Upload.Dir = filepath.Join(dir, "uploads")

	app, err := bootstrap.NewWithConfig(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return NewRouter(app)
}

func call(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := call(t, r, stdhttp.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, stdhttp.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Token
}

func TestRouterRoleEnforcement(t *testing.T) {
	r := newTestRouter(t, true)
	admin := register(t, r, "admin")
	viewer := register(t, r, "viewer")

	assert.Equal(t, stdhttp.StatusUnauthorized, call(t, r, stdhttp.MethodGet, "/api/v1/devices", "", nil).Code)

	w := call(t, r, stdhttp.MethodGet, "/api/v1/devices", viewer, nil)
	assert.Equal(t, stdhttp.StatusOK, w.Code)

	device := gin.H{"name": "R21", "host": "172.16.39.121", "device_type": "arista_eos"}
	assert.Equal(t, stdhttp.StatusForbidden, call(t, r, stdhttp.MethodPost, "/api/v1/devices", viewer, device).Code)
	assert.Equal(t, stdhttp.StatusCreated, call(t, r, stdhttp.MethodPost, "/api/v1/devices", admin, device).Code)

	assert.Equal(t, stdhttp.StatusForbidden, call(t, r, stdhttp.MethodPost, "/api/v1/vectorstore/reset", viewer, nil).Code)
	assert.Equal(t, stdhttp.StatusOK, call(t, r, stdhttp.MethodPost, "/api/v1/vectorstore/reset", admin, nil).Code)

	assert.Equal(t, stdhttp.StatusOK, call(t, r, stdhttp.MethodGet, "/api/v1/library/commands", viewer, nil).Code)
}

func TestRouterWithoutAuth(t *testing.T) {
	r := newTestRouter(t, false)

	w := call(t, r, stdhttp.MethodGet, "/healthz", "", nil)
	assert.Equal(t, stdhttp.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, stdhttp.StatusOK, call(t, r, stdhttp.MethodGet, "/api/v1/health", "", nil).Code)
	assert.Equal(t, stdhttp.StatusOK, call(t, r, stdhttp.MethodGet, "/api/v1/network/topology", "", nil).Code)

	w = call(t, r, stdhttp.MethodPost, "/api/v1/network/audit", "", gin.H{"device_names": []string{"R15", "R16"}, "audit_types": []string{"bgp"}})
	assert.Equal(t, stdhttp.StatusOK, w.Code, w.Body.String())

	w = call(t, r, stdhttp.MethodGet, "/api/v1/network/audits", "", nil)
	require.Equal(t, stdhttp.StatusOK, w.Code)
	var resp struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Count)
}
