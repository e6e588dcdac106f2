package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	dir := t.TempDir()

	t.Run("loads every field", func(t *testing.T) {
		path := writeTempJSON(t, dir, "full.json", map[string]any{
			"endpoint_addr_http":              "www.example:9000",
			"database_dsn":                    "postgres://db",
			"store_backend":                   "redis",
			"redis_addr":                      "redis:6379",
			"redis_password":                  "pw",
			"redis_db":                        2,
			"secret_key":                      "my_secret_key",
			"access_token_validity_duration":  "1m",
			"refresh_token_validity_duration": 3 * int64(time.Minute),
			"identity_service_addr":           "users:9090",
			"identity_call_timeout":           "2s",
			"sweep_interval":                  "0s",
			"log_level":                       "debug",
			"log_format":                      "zap",
			"enable_docs":                     true,
		})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, path))

		assert.Equal(t, &Config{
			EndpointAddrHTTP:             "www.example:9000",
			DatabaseDSN:                  "postgres://db",
			StoreBackend:                 "redis",
			RedisAddr:                    "redis:6379",
			RedisPassword:                "pw",
			RedisDB:                      2,
			SecretKey:                    "my_secret_key",
			AccessTokenValidityDuration:  time.Minute,
			RefreshTokenValidityDuration: 3 * time.Minute,
			IdentityServiceAddr:          "users:9090",
			IdentityCallTimeout:          2 * time.Second,
			SweepInterval:                0,
			LogLevel:                     "debug",
			LogFormat:                    "zap",
			EnableDocs:                   true,
		}, cfg)
	})

	t.Run("absent fields keep current values", func(t *testing.T) {
		path := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "error"})

		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg
		want.LogLevel = "error"

		require.NoError(t, parseJson(cfg, path))
		assert.Equal(t, &want, cfg)
	})

	t.Run("no path → no changes", func(t *testing.T) {
		cfg := &Config{EndpointAddrHTTP: "defaults:1234", SweepInterval: time.Hour}
		require.NoError(t, parseJson(cfg, ""))
		assert.Equal(t, &Config{EndpointAddrHTTP: "defaults:1234", SweepInterval: time.Hour}, cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		err := parseJson(&Config{}, filepath.Join(dir, "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		assert.Error(t, parseJson(&Config{}, bad))
	})

	t.Run("invalid duration", func(t *testing.T) {
		path := writeTempJSON(t, dir, "baddur.json", map[string]any{"sweep_interval": "soon"})
		assert.Error(t, parseJson(&Config{}, path))
	})
}
