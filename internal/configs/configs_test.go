package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "127.0.0.1:8080", cfg.AppURL())
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := `
storage_driver = "redis"
redis_host = "cache.internal"
storage_key = "todo-list"
rate_limit_per_minute = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverRedis, cfg.StorageDriver)
	assert.Equal(t, "cache.internal:6379", cfg.RedisAddr())
	assert.Equal(t, "todo-list", cfg.StorageKey)
	assert.Equal(t, 30, cfg.RateLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_PicksUpDefaultFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(DefaultConfigFile, []byte(`app_port = "9090"`), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.AppURL())
}

func TestLoad_Errors(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load("does-not-exist.toml")
	assert.Error(t, err)

	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "invalid integer value for SHUTDOWN_TIMEOUT_SECONDS")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())

	cfg.StorageDriver = "postgres"
	cfg.RateLimit = 0
	err := cfg.Validate()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
	assert.ErrorContains(t, err, "RATE_LIMIT_PER_MINUTE")

	cfg = Defaults()
	cfg.StorageDriver = DriverMemory
	cfg.DatabaseDSN = ""
	assert.NoError(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")

	assert.Equal(t, log.WarnLevel, logger.GetLevel())
	logger.Info("hidden")
	logger.Warn("shown", "key", "tasks")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"key":"tasks"`)

	assert.Equal(t, log.InfoLevel, NewLogger(&buf, "loud", "").GetLevel())
}

func TestNewDatabaseClient(t *testing.T) {
	db, err := NewDatabaseClient(":memory:")
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("storage_entries"))
}
