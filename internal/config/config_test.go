package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaardie/emissions-api/internal/config"
)

// isolate points config discovery at a missing file so a config.yaml in the
// working directory cannot leak into tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.PathEnvVar, "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)
	t.Chdir(dir)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, config.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSAllowedOrigins)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 9000
log:
  level: debug
store:
  driver: memory
db:
  host: db.internal
  conn_max_lifetime: 10m
`), 0o600))

	t.Setenv("APP_PORT", "9100")
	t.Setenv("DB_NAME", "emissions")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.App.Port, "env overrides file")
	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "emissions", cfg.Database.Database)
	assert.Equal(t, 10*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSAllowedOrigins)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRatio, 1e-9)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())
}

func TestLoad_PathFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  env: staging\n"), 0o600))
	t.Setenv(config.PathEnvVar, path)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.App.Environment)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "STORE_DRIVER", "mongo"},
		{"bad port", "APP_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad ssl mode", "DB_SSL_MODE", "sometimes"},
		{"sample ratio above one", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(isolate(t))
			t.Setenv(tt.key, tt.val)

			_, err := config.Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	isolate(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
