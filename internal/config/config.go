// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Seed defaults for every optional setting.
//   - Honour the variable names of the original deployment (PORT, DB_USER, ...).
//   - Map PARCEL_ prefixed env vars into the nested Config struct.
//   - Validate required values so the app fails fast on bad/missing config.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix PARCEL_. Keys are lowercased, the prefix
	is removed and a double underscore marks nesting:

	  PARCEL_SERVER__PORT        -> server.port        -> Config.Server.Port
	  PARCEL_DATABASE__APP_NAME  -> database.app_name  -> Config.Database.AppName
*/

const (
	envPrefix = "PARCEL_"
	nestSep   = "__"
)

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Payment       PaymentConfig        `koanf:"payment" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Notifications NotificationsConfig  `koanf:"notifications"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// Database drivers understood by database.New.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig describes the parcel store.
//
// For mongo, Host is the cluster address (e.g. cluster0.abcde.mongodb.net)
// and a mongodb+srv connection string is built unless Port is set or URI
// overrides everything. For postgres, Host/Port/SSLMode build the DSN.
type DatabaseConfig struct {
	Driver          string `koanf:"driver" validate:"required,oneof=mongo postgres memory"`
	URI             string `koanf:"uri"`
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	Collection      string `koanf:"collection" validate:"required"`
	AppName         string `koanf:"app_name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"min=1"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
	AutoMigrate     bool   `koanf:"auto_migrate"`
}

// Validate checks the settings that depend on the selected driver.
func (c DatabaseConfig) Validate() error {
	if c.Driver == DriverMemory || c.URI != "" {
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("database.host is required for driver %s", c.Driver)
	}
	if c.Driver == DriverPostgres && c.Port == 0 {
		return fmt.Errorf("database.port is required for driver %s", c.Driver)
	}
	return nil
}

// RedisConfig contains Redis connection details. Address is "host:port";
// empty disables everything that needs Redis.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// PaymentConfig configures the Stripe gateway.
//
// APIURL overrides the Stripe API base URL (stripe-mock, tests).
type PaymentConfig struct {
	SecretKey string `koanf:"secret_key"`
	Currency  string `koanf:"currency" validate:"required,len=3"`
	APIURL    string `koanf:"api_url"`
}

// IntegrationConfig stores credentials for third-party integrations.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// NotificationsConfig toggles the parcel-created email. It needs both a
// Redis address (job queue) and a Resend key.
type NotificationsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// legacyEnv maps the variable names used by the original deployment onto
// config keys. They sit between the defaults and the PARCEL_ variables.
var legacyEnv = map[string]string{
	"PORT":                "server.port",
	"DB_USER":             "database.user",
	"DB_PASS":             "database.password",
	"DB_CLUSTER":          "database.host",
	"PAYMENT_GATEWAY_KEY": "payment.secret_key",
}

func defaults() map[string]interface{} {
	obs := DefaultObservabilityConfig()

	return map[string]interface{}{
		"primary.env": "development",

		"server.port":                 "5000",
		"server.read_timeout":         30,
		"server.write_timeout":        30,
		"server.idle_timeout":         60,
		"server.cors_allowed_origins": []string{"*"},

		"database.driver":             DriverMongo,
		"database.name":               "parcelDB",
		"database.collection":         "parcels",
		"database.app_name":           "Cluster0",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.conn_max_lifetime":  1800,
		"database.conn_max_idle_time": 300,
		"database.auto_migrate":       true,

		"payment.currency": "usd",

		"integration.email_from": "Parcel Server <onboarding@resend.dev>",

		"observability.service_name":                          obs.ServiceName,
		"observability.environment":                           obs.Environment,
		"observability.logging.level":                         obs.Logging.Level,
		"observability.logging.format":                        obs.Logging.Format,
		"observability.logging.slow_query_threshold":          obs.Logging.SlowQueryThreshold,
		"observability.new_relic.app_log_forwarding_enabled":  obs.NewRelic.AppLogForwardingEnabled,
		"observability.new_relic.distributed_tracing_enabled": obs.NewRelic.DistributedTracingEnabled,
		"observability.new_relic.debug_logging":               obs.NewRelic.DebugLogging,
		"observability.health_checks.enabled":                 obs.HealthChecks.Enabled,
		"observability.health_checks.timeout":                 obs.HealthChecks.Timeout,
		"observability.health_checks.checks":                  obs.HealthChecks.Checks,
	}
}

// listKeys are the env keys whose values are split on commas.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":        true,
	"observability.health_checks.checks": true,
}

// envKey turns PARCEL_DATABASE__APP_NAME into database.app_name.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), nestSep, ".")
}

// LoadConfig loads configuration from defaults and environment variables,
// unmarshals it into Config, validates it and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load config defaults: %w", err)
	}

	legacy := map[string]interface{}{}
	for name, key := range legacyEnv {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			legacy[key] = v
		}
	}
	if err := k.Load(confmap.Provider(legacy, "."), nil); err != nil {
		return nil, fmt.Errorf("could not load legacy env variables: %w", err)
	}

	// List keys are comma separated; everything else stays a string and is
	// converted by koanf's weak decoding on Unmarshal.
	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(s, v string) (string, interface{}) {
		key := envKey(s)
		if listKeys[key] {
			parts := strings.Split(v, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return key, parts
		}
		return key, v
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := mainConfig.Database.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed and the environment always follows primary.env
	// so logs and traces agree.
	mainConfig.Observability.ServiceName = "parcel-server"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// NotificationsReady reports whether the parcel-created email can be
// delivered with the current settings.
func (c *Config) NotificationsReady() bool {
	return c.Notifications.Enabled && c.Redis.Address != "" && c.Integration.ResendAPIKey != ""
}

// IsProduction reports whether primary.env is production.
func (c *Config) IsProduction() bool {
	return c.Primary.Env == "production"
}
