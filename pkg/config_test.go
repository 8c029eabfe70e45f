package loadstate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.ListenAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, DefaultSuccessTTL, cfg.SuccessTTL)
	assert.Equal(t, int64(DefaultRecentCap), cfg.RecentCap)
	assert.Equal(t, ExpireFireAndForget, cfg.Policy())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LOADSTATE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("LOADSTATE_SUCCESS_TTL", "2s")
	t.Setenv("LOADSTATE_EXPIRY_POLICY", "reset-on-success")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
	assert.Equal(t, 2*time.Second, cfg.SuccessTTL)
	assert.Equal(t, ExpireResetOnSuccess, cfg.Policy())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "listen_addr: 127.0.0.1:9090\nrecent_cap: 25\nsuccess_ttl: 500ms\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loadstate.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr)
	assert.Equal(t, int64(25), cfg.RecentCap)
	assert.Equal(t, 500*time.Millisecond, cfg.SuccessTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestConfigPolicyMapping(t *testing.T) {
	assert.Equal(t, ExpireResetOnSuccess, Config{ExpiryPolicy: "RESET-ON-SUCCESS"}.Policy())
	assert.Equal(t, ExpireFireAndForget, Config{ExpiryPolicy: "fire-and-forget"}.Policy())
	assert.Equal(t, ExpireFireAndForget, Config{ExpiryPolicy: "garbage"}.Policy())
}
