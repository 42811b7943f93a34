package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	RabbitMQ RabbitMQConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// RabbitMQConfig holds the product event broker configuration.
// An empty URL disables event publication.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// Enabled reports whether a broker URL is configured.
func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

// AuthConfig holds the admin login configuration.
type AuthConfig struct {
	Enabled           bool
	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration
}

// New returns a viper instance with defaults and environment binding applied.
// When configFile is non-empty it is read as well; environment variables win.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=catalog port=5432 sslmode=disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "catalog")
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	return v, nil
}

// Load builds a validated Config from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("APP_PORT"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("DB_DRIVER"),
			DSN:             v.GetString("DATABASE_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Auth: AuthConfig{
			Enabled:           v.GetBool("AUTH_ENABLED"),
			AdminUsername:     v.GetString("ADMIN_USERNAME"),
			AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
			JWTSecret:         v.GetString("JWT_SECRET"),
			TokenTTL:          v.GetDuration("TOKEN_TTL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for driver %s", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %s (must be postgres, sqlite or memory)", c.Database.Driver)
	}

	if c.Database.MaxOpenConns < 1 {
		return errors.New("database max open connections must be at least 1")
	}

	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return errors.New("database max idle connections must be between 0 and max open connections")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.RabbitMQ.Enabled() && c.RabbitMQ.Exchange == "" {
		return errors.New("RabbitMQ exchange is required when RabbitMQ is enabled")
	}

	if c.Auth.Enabled {
		if c.Auth.AdminUsername == "" {
			return errors.New("admin username is required when auth is enabled")
		}
		if c.Auth.AdminPasswordHash == "" {
			return errors.New("admin password hash is required when auth is enabled")
		}
		if c.Auth.JWTSecret == "" {
			return errors.New("JWT secret is required when auth is enabled")
		}
		if c.Auth.TokenTTL <= 0 {
			return errors.New("token TTL must be positive")
		}
	}

	return nil
}
