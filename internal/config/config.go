package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Redis    RedisConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int    `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Timezone string `env:"APP_TIMEZONE" envDefault:"Asia/Jakarta"`
	// Store selects the persistence backend: postgres or memory.
	Store string `env:"STORE" envDefault:"postgres"`
}

type DatabaseConfig struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"cmlabs-attendance"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns int32  `env:"DB_MIN_CONNS" envDefault:"2"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string `env:"JWT_SECRET_KEY"`
	AccessExpiration string `env:"JWT_ACCESS_EXPIRATION_TIME" envDefault:"1h"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Channel  string `env:"REDIS_CHANNEL" envDefault:"attendance:notifications"`
}

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is invalid: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}

	switch c.App.Store {
	case StorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE must be one of: %s, %s", StorePostgres, StoreMemory)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED is true")
	}
	return nil
}

// Location is the time zone attendance day boundaries are computed in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.App.Timezone)
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
