// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types and validates that the
// required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into the Config struct tree.
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional blocks (observability, pagination, cache).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the MENU_ prefix. Keys are lowercased, the
	prefix is removed and a double underscore marks nesting:

		MENU_SERVER__PORT           -> server.port        -> Config.Server.Port
		MENU_PAGINATION__MAX_PAGE_SIZE -> pagination.max_page_size
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "MENU_"

// Store drivers understood by the repository layer.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config is the root configuration object for the application.
//
// Database is only required when the postgres store driver is selected, so
// it is validated separately in LoadConfig. Redis and Auth are optional:
// an empty redis address disables the item cache and background jobs, an
// empty Clerk secret disables authentication on write routes.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Store         StoreConfig          `koanf:"store"`
	Database      DatabaseConfig       `koanf:"database" validate:"-"`
	Redis         RedisConfig          `koanf:"redis"`
	Auth          AuthConfig           `koanf:"auth"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Pagination    PaginationConfig     `koanf:"pagination"`
	Cache         CacheConfig          `koanf:"cache"`
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
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
	// RateLimit is the number of requests per second allowed per client IP.
	// Zero disables the limiter.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
}

// StoreConfig selects the Entity Store implementation.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"omitempty,oneof=postgres memory"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port"; empty means Redis is not used.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// AuthConfig stores the Clerk secret key used to verify session tokens.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key"`
}

// Enabled reports whether write routes must be authenticated.
func (a AuthConfig) Enabled() bool {
	return a.SecretKey != ""
}

// IntegrationConfig holds credentials of third-party services.
// An empty ResendAPIKey leaves notification emails unsent.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// PaginationConfig sizes the main item listing. The reduced listing is
// fixed at pagination.SmallPageSize.
type PaginationConfig struct {
	DefaultPageSize int `koanf:"default_page_size" validate:"gte=0"`
	MaxPageSize     int `koanf:"max_page_size" validate:"gte=0"`
}

// CacheConfig controls the Redis-backed item cache.
type CacheConfig struct {
	ItemTTL time.Duration `koanf:"item_ttl"`
}

// DefaultPaginationConfig mirrors the listing sizes the API documents.
func DefaultPaginationConfig() PaginationConfig {
	return PaginationConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it and applies defaults.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	// koanf reads every env var as a string, so comma separated lists arrive
	// as a single element.
	mainConfig.Server.CORSAllowedOrigins = splitList(mainConfig.Server.CORSAllowedOrigins)

	mainConfig.applyDefaults()

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Store.Driver == StoreDriverPostgres {
		if err := validate.Struct(mainConfig.Database); err != nil {
			return nil, fmt.Errorf("database config validation failed: %w", err)
		}
	}

	// Service name and environment are forced so every telemetry signal
	// is tagged the same way.
	mainConfig.Observability.ServiceName = "menu-api"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = StoreDriverPostgres
	}

	defaults := DefaultPaginationConfig()
	if c.Pagination.DefaultPageSize == 0 {
		c.Pagination.DefaultPageSize = defaults.DefaultPageSize
	}
	if c.Pagination.MaxPageSize == 0 {
		c.Pagination.MaxPageSize = defaults.MaxPageSize
	}

	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = "Menu <onboarding@resend.dev>"
	}

	if c.Cache.ItemTTL == 0 {
		c.Cache.ItemTTL = 5 * time.Minute
	}

	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
