package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/registry/internal/registry/service"
	"github.com/aussiebroadwan/registry/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Issuer    string        // Issuer claim of access tokens (default: registry)
	AccessTTL time.Duration // Access token and session lifetime (default: 30m)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./registry.db)
	DatabaseURL    string // Postgres DSN, required with the postgres driver

	PepperFile    string // File holding the password pepper, created on first start (default: ./pepper)
	MasterKeyPath string // File holding the credential sealing key material
	MasterKey     string // Key material given inline, used when MasterKeyPath is empty

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	StatsInterval       time.Duration // Statistics gauge refresh interval (default: 1m)
	PageSize            int           // Web UI list page size (default: 10)
	CookieSecure        bool          // Mark the session cookie Secure (default: false)
}

// LoadConfig reads the configuration from the environment. Variables from
// the file named by REGISTRY_ENV_FILE (default .env) are loaded first
// without overriding ones already set; a missing file is ignored.
func LoadConfig() (Config, error) {
	envFile := getEnvOrDefault("REGISTRY_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Config{
		Issuer:    getEnvOrDefault("REGISTRY_ISSUER", "registry"),
		AccessTTL: getEnvDurationOrDefault("REGISTRY_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),

		DatabaseDriver: getEnvOrDefault("REGISTRY_DATABASE_DRIVER", DriverSQLite),
		DatabaseFile:   getEnvOrDefault("REGISTRY_DATABASE_FILE", "registry.db"),
		DatabaseURL:    os.Getenv("REGISTRY_DATABASE_URL"),

		PepperFile:    getEnvOrDefault("REGISTRY_PEPPER_FILE", "pepper"),
		MasterKeyPath: os.Getenv("REGISTRY_MASTER_KEY_PATH"),
		MasterKey:     os.Getenv("REGISTRY_MASTER_KEY"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		StatsInterval:       getEnvDurationOrDefault("REGISTRY_STATS_INTERVAL", time.Minute),
		PageSize:            getEnvIntOrDefault("REGISTRY_PAGE_SIZE", service.DefaultPageSize),
		CookieSecure:        getEnvBoolOrDefault("REGISTRY_COOKIE_SECURE", false),
	}

	return cfg, cfg.Validate()
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("REGISTRY_DATABASE_URL is required with the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.DatabaseDriver)
	}

	if c.PageSize < 1 || c.PageSize > service.MaxPageSize {
		return fmt.Errorf("REGISTRY_PAGE_SIZE must be between 1 and %d", service.MaxPageSize)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
