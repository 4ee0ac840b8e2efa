package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodSecret = "k3Jv9QzP1xLm8TrWc4YbN6sHd2GfA7Ue"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv(envDBPassword, "secret")
	t.Setenv(envJWTSecret, goodSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultServerPort, cfg.Server.Port)
	assert.Equal(t, 3*time.Hour, cfg.JWT.ExpiryDuration)
	assert.Equal(t, "bcrypt", cfg.Password.Algorithm)
	assert.Equal(t, 5, cfg.Login.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Login.LockoutWindow)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Policy.File)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Server.EnableProfiling)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.Server.CORSAllowedOrigins)
	assert.False(t, cfg.Server.TrustProxy)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv(envJWTExpiry, "90m")
	t.Setenv(envLoginLockoutWindow, "30")
	t.Setenv(envPasswordAlgorithm, "argon2id")
	t.Setenv(envRedisURL, "redis://localhost:6379/0")
	t.Setenv(envDBPort, "not-a-number")
	t.Setenv(envEnableProfiling, "YES")
	t.Setenv(envCORSAllowedOrigins, "https://blog.example.com, ,https://admin.example.com")
	t.Setenv(envTrustProxy, "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.JWT.ExpiryDuration)
	assert.Equal(t, 30*time.Minute, cfg.Login.LockoutWindow, "bare integers are minutes")
	assert.Equal(t, "argon2id", cfg.Password.Algorithm)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, defaultDBPort, cfg.Database.Port)
	assert.True(t, cfg.Server.EnableProfiling)
	assert.Equal(t, []string{"https://blog.example.com", "https://admin.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.True(t, cfg.Server.TrustProxy)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing db password", map[string]string{envDBPassword: ""}},
		{"missing jwt secret", map[string]string{envJWTSecret: ""}},
		{"short jwt secret", map[string]string{envJWTSecret: "too-short"}},
		{"low entropy secret", map[string]string{envJWTSecret: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}},
		{"unknown algorithm", map[string]string{envPasswordAlgorithm: "md5"}},
		{"negative attempts", map[string]string{envLoginMaxAttempts: "-1"}},
		{"unknown log format", map[string]string{envLogFormat: "xml"}},
		{"zero expiry", map[string]string{envJWTExpiry: "0s"}},
		{"unparsable expiry", map[string]string{envJWTExpiry: "bogus"}},
		{"unparsable read timeout", map[string]string{envServerReadTimeout: "ten seconds"}},
		{"zero lockout window", map[string]string{envLoginLockoutWindow: "0"}},
		{"negative lockout window", map[string]string{envLoginLockoutWindow: "-5m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadReportsUnparsableDuration(t *testing.T) {
	setRequired(t)
	t.Setenv(envJWTExpiry, "bogus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), envJWTExpiry)
}

func TestLockoutWindowIgnoredWhenThrottleDisabled(t *testing.T) {
	setRequired(t)
	t.Setenv(envLoginMaxAttempts, "0")
	t.Setenv(envLoginLockoutWindow, "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Login.MaxAttempts)
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "blog", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=blog sslmode=require", cfg.DSN())
}
