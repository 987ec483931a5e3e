package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Redis.LookupCacheTTL)
	assert.Equal(t, time.UTC, cfg.App.Location())
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LOOKUP_CACHE_TTL", "30s")
	t.Setenv("DISPLAY_TIMEZONE", "America/Argentina/Buenos_Aires")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.Redis.LookupCacheTTL)
	assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.App.Location().String())
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load("testdata/does-not-exist.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("DISPLAY_TIMEZONE", "Mars/Olympus")

	_, err := Load("testdata/does-not-exist.env")
	require.Error(t, err)
}
