package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("METALSTOCK_POSTGRES_DSN", "postgres://localhost/metalstock")
	t.Setenv("METALSTOCK_AUTH_JWT_SECRET", testSecret)
	t.Setenv("METALSTOCK_HTTP_ADDR", ":9090")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "postgres://localhost/metalstock", cfg.Postgres.DSN)
	assert.Equal(t, 15*time.Second, cfg.Postgres.StatementTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.Postgres.Migrate)
	assert.False(t, cfg.Idempotency.Enabled)
	assert.Equal(t, "ru", cfg.Inventory.Locale)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: production
postgres:
  dsn: postgres://file/db
auth:
  jwt_secret: `+testSecret+`
idempotency:
  enabled: true
  ttl: 1h
`), 0o600))
	t.Setenv("METALSTOCK_POSTGRES_DSN", "postgres://env/db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/db", cfg.Postgres.DSN)
	assert.True(t, cfg.Idempotency.Enabled)
	assert.Equal(t, time.Hour, cfg.Idempotency.TTL)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_RequiresSecretAndDSN(t *testing.T) {
	t.Setenv("METALSTOCK_POSTGRES_DSN", "")
	t.Setenv("METALSTOCK_AUTH_JWT_SECRET", "")

	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("METALSTOCK_POSTGRES_DSN", "postgres://localhost/db")
	t.Setenv("METALSTOCK_AUTH_JWT_SECRET", "short")
	_, err = Load("")
	assert.ErrorContains(t, err, "jwt_secret")
}
