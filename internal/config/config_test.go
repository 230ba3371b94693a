package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "transactions", cfg.GuestStore.Collection)
	assert.Equal(t, 50, cfg.Sync.DefaultMaxResults)
	assert.True(t, cfg.Sync.DefaultSyncAll)
	assert.Equal(t, 10*time.Second, cfg.Services.RequestTimeout)
	require.NotNil(t, cfg.JWT.PrivateKey)
	require.NotNil(t, cfg.JWT.PublicKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GUEST_STORE_PATH", "/tmp/guest-test.db")
	t.Setenv("SYNC_DEFAULT_MAX_RESULTS", "25")
	t.Setenv("SYNC_DEFAULT_SYNC_ALL", "false")
	t.Setenv("SERVICES_REQUEST_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://app.example.com, https://beta.example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/tmp/guest-test.db", cfg.GuestStore.Path)
	assert.Equal(t, 25, cfg.Sync.DefaultMaxResults)
	assert.False(t, cfg.Sync.DefaultSyncAll)
	assert.Equal(t, 3*time.Second, cfg.Services.RequestTimeout)
	assert.Equal(t, []string{"https://app.example.com", "https://beta.example.com"}, cfg.Server.CORSAllowOrigins)
}

func TestLoad_InvalidEnvFallsBackToDefaults(t *testing.T) {
	t.Setenv("SYNC_DEFAULT_MAX_RESULTS", "many")
	t.Setenv("SERVICES_REQUEST_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 50, cfg.Sync.DefaultMaxResults)
	assert.Equal(t, 10*time.Second, cfg.Services.RequestTimeout)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: "5433", User: "u", Password: "p", Name: "penny", SSLMode: "disable",
	}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=penny sslmode=disable", cfg.DSN())
}
