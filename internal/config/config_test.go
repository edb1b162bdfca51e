package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)

	_, err = Load(filepath.Join(t.TempDir(), "none.yaml"), true)
	assert.Error(t, err, "explicit config path must exist")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: /tmp/levels.db
log_level: debug
server:
  addr: ":9000"
session:
  redis_addr: localhost:6379
  ttl: 2h
`), 0644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/levels.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout, "unset keys keep defaults")
	assert.Equal(t, "localhost:6379", cfg.Session.RedisAddr)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "sokodle:session:", cfg.Session.Prefix)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(path, true)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		EnvDB:        "/data/s.db",
		EnvAddr:      ":7000",
		EnvRedisAddr: "redis:6379",
		EnvLogLevel:  "warn",
	}
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "/data/s.db", cfg.DBPath)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "redis:6379", cfg.Session.RedisAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
}
