package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, key, value string) {
	old, had := os.LookupEnv(key)
	_ = os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "STORE_DRIVER", "DB_DSN", "REDIS_URL", "BROADCAST_TPS", "CORS_ORIGINS"} {
		setEnv(t, key, "")
		_ = os.Unsetenv(key)
	}

	cfg := Load()

	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, "sqlite", cfg.StoreDriver)
	require.Equal(t, "contacts.db", cfg.DbDsn)
	require.Equal(t, "", cfg.RedisURL)
	require.Equal(t, 10, cfg.BroadcastTPS)
	require.Equal(t, []string{"*"}, cfg.CorsOrigins)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	setEnv(t, "HTTP_PORT", "9090")
	setEnv(t, "STORE_DRIVER", "storm")
	setEnv(t, "CACHE_TTL", "30s")
	setEnv(t, "CORS_ORIGINS", "http://a.test, http://b.test")
	setEnv(t, "LOG_DEV", "true")

	cfg := Load()

	require.Equal(t, "9090", cfg.HTTPPort)
	require.Equal(t, StoreStorm, cfg.StoreDriver)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CorsOrigins)
	require.True(t, cfg.LogDev)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := Config{StoreDriver: "mysql", BroadcastTPS: 1, BroadcastQueue: 1, CorsOrigins: []string{"*"}}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.StoreDriver = "mongo"
	require.Error(t, bad.Validate())

	bad = valid
	bad.BroadcastTPS = 0
	require.Error(t, bad.Validate())

	bad = valid
	bad.BroadcastQueue = -1
	require.Error(t, bad.Validate())

	bad = valid
	bad.CorsOrigins = nil
	require.Error(t, bad.Validate())
}
