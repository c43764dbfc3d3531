// Package config manages environment variables.
//
// It reads variables (optionally from a `.env` file), loads them into
// structured Go types, applies defaults for optional blocks, and validates
// that required values are present so the process fails fast on bad config.
//
// Keys:
//   - only variables prefixed with BCTW_ are read
//   - the prefix is removed and the rest lowercased
//   - a double underscore separates nesting levels
//
// For example BCTW_DATABASE__MAX_CONNS maps to Config.Database.MaxConns.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process environment, if present.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of every variable read by LoadConfig.
const EnvPrefix = "BCTW_"

// ServiceName tags logs, traces and APM data.
const ServiceName = "bctw-api"

// Config is the root configuration object for the application.
//
// Observability, Integration and Notification are pointers because they are
// optional; defaults are injected when they are missing.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   *IntegrationConfig   `koanf:"integration"`
	Notification  *NotificationConfig  `koanf:"notification"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime. Timeouts are in
// seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters, pool tuning and
// the schemas the stored functions live in.
type DatabaseConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password" validate:"required"`
	Name     string `koanf:"name" validate:"required"`
	SSLMode  string `koanf:"ssl_mode" validate:"required"`

	// Pool sizing. MaxConns bounds the number of concurrent statements.
	MaxConns        int `koanf:"max_conns" validate:"required,min=1"`
	MinConns        int `koanf:"min_conns" validate:"min=0"`
	ConnMaxLifetime int `koanf:"conn_max_lifetime" validate:"required"`  // seconds
	ConnMaxIdleTime int `koanf:"conn_max_idle_time" validate:"required"` // seconds

	// StatementTimeout is applied as the session statement_timeout, in
	// milliseconds. Zero leaves the server default.
	StatementTimeout int `koanf:"statement_timeout" validate:"min=0"`

	// Schema holds the tables, views and write functions. APISchema holds the
	// read-only views exposed to external data consumers.
	Schema    string `koanf:"schema"`
	APISchema string `koanf:"api_schema"`
}

// DSN builds a postgres:// connection string. The password is URL-escaped and
// IPv6 hosts are bracketed.
func (c DatabaseConfig) DSN() string {
	hostPort := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		hostPort,
		c.Name,
		c.SSLMode,
	)
}

// RedisConfig contains Redis connection details.
type RedisConfig struct {
	// Address is "host:port".
	Address string `koanf:"address" validate:"required"`

	// CodeCacheTTL is how long code lookups stay cached.
	CodeCacheTTL time.Duration `koanf:"code_cache_ttl"`
}

// AuthConfig stores authentication secrets.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required"`
}

// IntegrationConfig holds credentials of outbound notification providers.
// An empty Plivo auth id disables SMS delivery.
type IntegrationConfig struct {
	ResendAPIKey   string `koanf:"resend_api_key"`
	EmailFrom      string `koanf:"email_from" validate:"omitempty,email"`
	PlivoAuthID    string `koanf:"plivo_auth_id"`
	PlivoAuthToken string `koanf:"plivo_auth_token" validate:"required_with=PlivoAuthID"`
	SMSFrom        string `koanf:"sms_from" validate:"required_with=PlivoAuthID"`
}

// SMSEnabled reports whether Plivo credentials are configured.
func (c *IntegrationConfig) SMSEnabled() bool {
	return c != nil && c.PlivoAuthID != ""
}

// NotificationConfig controls the database change-event listener.
type NotificationConfig struct {
	// Channel is the Postgres LISTEN channel alert triggers publish on.
	Channel string `koanf:"channel"`

	// AdminEmail receives onboarding requests.
	AdminEmail string `koanf:"admin_email" validate:"omitempty,email"`

	// ReconnectBackoff is the wait before the listener reconnects.
	ReconnectBackoff time.Duration `koanf:"reconnect_backoff"`
}

// LoadConfig loads configuration from BCTW_ environment variables, applies
// defaults and validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Observability defaults are decoded over, so a partial block keeps the
	// defaults for the keys it does not set.
	mainConfig := &Config{Observability: DefaultObservabilityConfig()}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	applyDefaults(mainConfig)

	// Service name and environment always follow the primary block.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// listKeys are split on commas.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":        true,
	"observability.health_checks.checks": true,
}

func envKeyValue(key, value string) (string, any) {
	k := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	k = strings.ReplaceAll(k, "__", ".")
	if listKeys[k] {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return k, parts
	}
	return k, value
}

func applyDefaults(c *Config) {
	if c.Database.Schema == "" {
		c.Database.Schema = "bctw"
	}
	if c.Database.APISchema == "" {
		c.Database.APISchema = "bctw_dapi_v1"
	}
	if c.Redis.CodeCacheTTL == 0 {
		c.Redis.CodeCacheTTL = 10 * time.Minute
	}
	if c.Integration == nil {
		c.Integration = &IntegrationConfig{}
	}
	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = "noreply@bctw.local"
	}
	if c.Notification == nil {
		c.Notification = &NotificationConfig{}
	}
	if c.Notification.Channel == "" {
		c.Notification.Channel = "bctw_alert"
	}
	if c.Notification.ReconnectBackoff == 0 {
		c.Notification.ReconnectBackoff = 5 * time.Second
	}
	if len(c.Observability.HealthChecks.Checks) == 0 {
		c.Observability.HealthChecks.Checks = []string{"database", "redis"}
	}
}
