package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable, e.g. GOPHAUTH_SECRET_KEY.
const EnvPrefix = "GOPHAUTH"

const defaultEnvFile = ".env"

// parseEnv loads an optional dotenv file into the process environment and
// then overlays every GOPHAUTH_* variable that is set.
func parseEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", defaultEnvFile, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	stringKeys := map[string]*string{
		"endpoint_addr_http":    &config.EndpointAddrHTTP,
		"database_dsn":          &config.DatabaseDSN,
		"store_backend":         &config.StoreBackend,
		"redis_addr":            &config.RedisAddr,
		"redis_password":        &config.RedisPassword,
		"secret_key":            &config.SecretKey,
		"identity_service_addr": &config.IdentityServiceAddr,
		"log_level":             &config.LogLevel,
		"log_format":            &config.LogFormat,
	}
	for key, dst := range stringKeys {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	durations := map[string]*time.Duration{
		"access_token_validity_duration":  &config.AccessTokenValidityDuration,
		"refresh_token_validity_duration": &config.RefreshTokenValidityDuration,
		"identity_call_timeout":           &config.IdentityCallTimeout,
		"sweep_interval":                  &config.SweepInterval,
	}
	for key, dst := range durations {
		if !v.IsSet(key) {
			continue
		}
		d, err := cast.ToDurationE(v.Get(key))
		if err != nil {
			return fmt.Errorf("env %s_%s: %w", EnvPrefix, strings.ToUpper(key), err)
		}
		*dst = d
	}

	if v.IsSet("redis_db") {
		n, err := cast.ToIntE(v.Get("redis_db"))
		if err != nil {
			return fmt.Errorf("env %s_REDIS_DB: %w", EnvPrefix, err)
		}
		config.RedisDB = n
	}
	if v.IsSet("enable_docs") {
		b, err := cast.ToBoolE(v.Get("enable_docs"))
		if err != nil {
			return fmt.Errorf("env %s_ENABLE_DOCS: %w", EnvPrefix, err)
		}
		config.EnableDocs = b
	}
	return nil
}
