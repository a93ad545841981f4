// Package config loads service configuration from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/shaardie/emissions-api/internal/database"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "EMISSIONS_CONFIG"

// DefaultPaths are searched in order when PathEnvVar is unset.
var DefaultPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/emissions-api/config.yaml",
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full service configuration.
type Config struct {
	App       AppConfig       `koanf:"app"`
	Log       LogConfig       `koanf:"log"`
	HTTP      HTTPConfig      `koanf:"http"`
	Store     StoreConfig     `koanf:"store"`
	Database  database.Config `koanf:"db"`
	Telemetry TelemetryConfig `koanf:"otel"`
}

type AppConfig struct {
	Port        int    `koanf:"port" validate:"min=1,max=65535"`
	Environment string `koanf:"env" validate:"required"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type HTTPConfig struct {
	ReadTimeout        time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute" validate:"min=0"`
	RequireTLS         bool          `koanf:"require_tls"`
}

type StoreConfig struct {
	Driver         string        `koanf:"driver" validate:"oneof=postgres memory"`
	BreakerTimeout time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	OTLPEndpoint string  `koanf:"endpoint" validate:"required_if=Enabled true"`
	SampleRatio  float64 `koanf:"sample_ratio" validate:"gte=0,lte=1"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		App: AppConfig{
			Port:        8080,
			Environment: "development",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		HTTP: HTTPConfig{
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       15 * time.Second,
			IdleTimeout:        60 * time.Second,
			ShutdownTimeout:    30 * time.Second,
			CORSAllowedOrigins: []string{"*"},
			RateLimitPerMinute: 120,
			RequireTLS:         false,
		},
		Store: StoreConfig{
			Driver:         DriverPostgres,
			BreakerTimeout: 30 * time.Second,
		},
		Database: database.DefaultConfig(),
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			SampleRatio:  1,
		},
	}
}

// Load reads configuration from path (or the discovered file when path is
// empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitList(k, "http.cors_allowed_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitList turns a comma separated string value at path into a list.
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

var envMappings = map[string]string{
	"app_port": "app.port",
	"app_env":  "app.env",

	"log_level":  "log.level",
	"log_format": "log.format",

	"cors_allowed_origins":  "http.cors_allowed_origins",
	"rate_limit_per_minute": "http.rate_limit_per_minute",
	"require_tls":           "http.require_tls",

	"store_driver":          "store.driver",
	"store_breaker_timeout": "store.breaker_timeout",

	"db_host":              "db.host",
	"db_port":              "db.port",
	"db_user":              "db.user",
	"db_password":          "db.password",
	"db_name":              "db.name",
	"db_ssl_mode":          "db.ssl_mode",
	"db_max_open_conns":    "db.max_open_conns",
	"db_max_idle_conns":    "db.max_idle_conns",
	"db_conn_max_lifetime": "db.conn_max_lifetime",
	"db_connect_timeout":   "db.connect_timeout",

	"otel_enabled":                "otel.enabled",
	"otel_exporter_otlp_endpoint": "otel.endpoint",
	"otel_traces_sampler_arg":     "otel.sample_ratio",
}

// envTransformFunc maps known environment variables to config keys and drops
// everything else.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
