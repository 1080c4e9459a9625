package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netauto/internal/config"
	"netauto/internal/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	cfg, err := config.Load()
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.App.GinMode = "test"
	cfg.Database.Driver = "sqlite"
	cfg.SQLite.Path = ":memory:"
	cfg.Redis.Addr = ""
	cfg.RabbitMQ.URL = ""
	cfg.VectorStore.Backend = "memory"
	cfg.VectorStore.PersistDirectory = filepath.Join(dir, "vectors")
	cfg.Upload.Dir = filepath.Join(dir, "uploads")
	return cfg
}

func TestNewWithConfigDefaults(t *testing.T) {
	cfg := testConfig(t)

	a, err := NewWithConfig(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()

	assert.Nil(t, a.Redis)
	assert.Nil(t, a.MQConn)
	assert.Nil(t, a.Publisher)
	assert.Equal(t, "memory", a.VectorStore.Backend().Name())

	devices, err := a.Services.Devices.List()
	require.NoError(t, err)
	assert.Len(t, devices, len(cfg.Network.Devices))

	plugins := a.Plugins.List()
	require.Len(t, plugins, 1)
	assert.Equal(t, "command_library", plugins[0].Name)
}

func TestNewWithConfigSkipsSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Network.SeedDevices = false

	a, err := NewWithConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	devices, err := a.Services.Devices.List()
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestNewWithConfigRejectsUnknownDrivers(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "oracle"
	_, err := NewWithConfig(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unsupported database driver")

	cfg = testConfig(t)
	cfg.VectorStore.Backend = "faiss"
	_, err = NewWithConfig(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unsupported vector store backend")
}
