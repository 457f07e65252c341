package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoad_LocalDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.local.yaml", `
database:
  driver: memory
jwt:
  secret: s
verification:
  otp_ttl: 2m
`)
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 100000, cfg.OTP.Min)
	assert.Equal(t, 999999, cfg.OTP.Max)
	assert.Equal(t, 2*time.Minute, cfg.Verification.OTPTTL)
	assert.Equal(t, 15*time.Minute, cfg.Verification.LinkTTL)
	assert.Equal(t, 100, cfg.Pricing.FlatUnitPrice)
}

func TestLoad_ProductionWithEnvSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.production.yaml", `
server:
  port: 9000
database:
  driver: postgres
jwt:
  secret: ""
`)
	t.Setenv("APP_ENV", "Production")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/autodocs")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "postgres://u:p@db/autodocs", cfg.Database.DSN)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load(t.TempDir())
	assert.Error(t, err, "missing file")

	dir := t.TempDir()
	writeFile(t, dir, "config.local.yaml", "database:\n  driver: memory\n")
	_, err = Load(dir)
	assert.ErrorContains(t, err, "jwt.secret")

	writeFile(t, dir, "config.local.yaml", "database:\n  driver: postgres\njwt:\n  secret: s\n")
	_, err = Load(dir)
	assert.ErrorContains(t, err, "database.url")

	writeFile(t, dir, "config.local.yaml", "database:\n  driver: memory\njwt:\n  secret: s\notp:\n  min: 10\n  max: 5\n")
	_, err = Load(dir)
	assert.ErrorContains(t, err, "otp range")
}
