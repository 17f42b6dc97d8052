package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chdirTemp moves into an empty temp dir so no config.yaml or .env is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(1), cfg.Store.MinConns)
	assert.Equal(t, "local", cfg.Uploads.Driver)
	assert.Equal(t, "uploads", cfg.Uploads.Dir)
	assert.Equal(t, 0, cfg.Extraction.TimeoutSecs)
	assert.Equal(t, 0, cfg.Matching.TimeoutSecs)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, int64(0), cfg.Server.MaxUploadMB)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  database_url: orders.db
extraction:
  url: http://extract.local/extract
matching:
  url: http://match.local/match
  rate_per_sec: 2.5
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "orders.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "http://extract.local/extract", cfg.Extraction.URL)
	assert.Equal(t, "http://match.local/match", cfg.Matching.URL)
	assert.InDelta(t, 2.5, cfg.Matching.RatePerSec, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "local", cfg.Uploads.Driver)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("POMATCH_STORE_DRIVER", "postgres")
	t.Setenv("POMATCH_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("POMATCH_SERVER_PORT", "3000")
	t.Setenv("POMATCH_UPLOADS_BUCKET", "po-uploads")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "po-uploads", cfg.Uploads.Bucket)
}

func TestLoadDatabaseURLFallback(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/orders")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/orders", cfg.Store.DatabaseURL)
}

func TestLoadDatabaseURLPrefersPrefixed(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/fallback")
	t.Setenv("POMATCH_STORE_DATABASE_URL", "postgres://localhost/primary")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/primary", cfg.Store.DatabaseURL)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("POMATCH_MATCHING_URL=http://match.from.env/match\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("POMATCH_MATCHING_URL") }) //nolint:errcheck

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://match.from.env/match", cfg.Matching.URL)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validServe returns a Config that passes Validate("serve").
func validServe() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = "postgres://localhost/orders"
	cfg.Uploads.Driver = "local"
	cfg.Extraction.URL = "http://extract.local"
	cfg.Matching.URL = "http://match.local"
	cfg.Server.Port = 5000
	return cfg
}

func TestValidateServe_Valid(t *testing.T) {
	assert.NoError(t, validServe().Validate("serve"))
}

func TestValidateServe_MissingFields(t *testing.T) {
	cfg := &Config{}
	cfg.Store.Driver = "postgres"
	cfg.Uploads.Driver = "local"

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "server.port must be > 0")
	assert.Contains(t, err.Error(), "extraction.url is required")
	assert.Contains(t, err.Error(), "matching.url is required")
}

func TestValidateServe_UploadLimit(t *testing.T) {
	cfg := validServe()
	cfg.Server.MaxUploadMB = 64
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.MaxUploadMB = -1
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.max_upload_mb must be >= 0")
}

func TestValidateServe_S3NeedsBucket(t *testing.T) {
	cfg := validServe()
	cfg.Uploads.Driver = "s3"

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploads.bucket is required")

	cfg.Uploads.Bucket = "po-uploads"
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidate_UnknownDrivers(t *testing.T) {
	cfg := validServe()
	cfg.Store.Driver = "mysql"
	cfg.Uploads.Driver = "ftp"

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `store.driver "mysql"`)
	assert.Contains(t, err.Error(), `uploads.driver "ftp"`)
}

func TestValidateMigrate_OnlyNeedsStore(t *testing.T) {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "orders.db"

	assert.NoError(t, cfg.Validate("migrate"))
	assert.NoError(t, cfg.Validate("orders"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validServe().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
