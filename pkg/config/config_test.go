package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "1005", cfg.Security.CheckoutPIN)
	assert.Equal(t, 4, cfg.Security.CodeLength)
	assert.Equal(t, 5*time.Minute, cfg.Analytics.CacheTTL)
	assert.Equal(t, time.UTC, cfg.Analytics.Location())
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_DRIVER", "SQLITE3")
	t.Setenv("CHECKOUT_PIN", "4242")
	t.Setenv("SECURITY_CODE_LENGTH", "99")
	t.Setenv("ALLOWED_ORIGINS", "https://portal.example, ,https://admin.example")
	t.Setenv("ANALYTICS_TIMEZONE", "Africa/Johannesburg")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "4242", cfg.Security.CheckoutPIN)
	assert.Equal(t, 4, cfg.Security.CodeLength)
	assert.Equal(t, []string{"https://portal.example", "https://admin.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "Africa/Johannesburg", cfg.Analytics.Location().String())
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("bogus", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
