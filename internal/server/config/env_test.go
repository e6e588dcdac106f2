package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("GOPHAUTH_ENDPOINT_ADDR_HTTP", ":9999")
	t.Setenv("GOPHAUTH_STORE_BACKEND", "redis")
	t.Setenv("GOPHAUTH_REDIS_DB", "3")
	t.Setenv("GOPHAUTH_ACCESS_TOKEN_VALIDITY_DURATION", "5m")
	t.Setenv("GOPHAUTH_SWEEP_INTERVAL", "0")
	t.Setenv("GOPHAUTH_ENABLE_DOCS", "true")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, ""))

	assert.Equal(t, ":9999", cfg.EndpointAddrHTTP)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, time.Duration(0), cfg.SweepInterval)
	assert.True(t, cfg.EnableDocs)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidityDuration, "unset variables keep defaults")
}

func TestParseEnv_BadValues(t *testing.T) {
	tests := map[string]string{
		"GOPHAUTH_SWEEP_INTERVAL": "whenever",
		"GOPHAUTH_REDIS_DB":       "first",
		"GOPHAUTH_ENABLE_DOCS":    "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			cfg := &Config{}
			err := parseEnv(cfg, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestParseEnv_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GOPHAUTH_LOG_FORMAT=zap\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("GOPHAUTH_LOG_FORMAT") })

	cfg := &Config{}
	require.NoError(t, parseEnv(cfg, path))
	assert.Equal(t, "zap", cfg.LogFormat)
}

func TestParseEnv_MissingDotenvFile(t *testing.T) {
	err := parseEnv(&Config{}, filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
