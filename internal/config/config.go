package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds application configuration
type Config struct {
	ServerPort   string `toml:"server_port"`
	DatabaseType string `toml:"database_type"`
	DatabasePath string `toml:"database_path"`
	DatabaseURL  string `toml:"database_url"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// TokenSecret verifies HS256 bearer tokens issued by the identity provider.
	TokenSecret string `toml:"token_secret"`

	DefaultItemCount   int `toml:"default_item_count"`
	MaxItemCount       int `toml:"max_item_count"`
	DefaultWindowDays  int `toml:"default_window_days"`
	RateLimitPerMinute int `toml:"rate_limit_per_minute"`

	ShutdownTimeout time.Duration `toml:"-"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		ServerPort:         "8080",
		DatabaseType:       "sqlite",
		DatabasePath:       "./wordladder.db",
		LogLevel:           "info",
		LogFormat:          "text",
		DefaultItemCount:   10,
		MaxItemCount:       50,
		DefaultWindowDays:  30,
		RateLimitPerMinute: 30,
		ShutdownTimeout:    10 * time.Second,
	}
}

// Load builds configuration from defaults, a .env file, an optional TOML
// file and finally environment variables. An empty path falls back to
// $CONFIG_FILE; a path that does not exist is ignored.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := toml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ServerPort = getEnv("PORT", c.ServerPort)
	c.DatabaseType = getEnv("DB_TYPE", c.DatabaseType)
	c.DatabasePath = getEnv("DB_PATH", c.DatabasePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.TokenSecret = getEnv("TOKEN_SECRET", c.TokenSecret)

	ints := []struct {
		key string
		dst *int
	}{
		{"DEFAULT_ITEM_COUNT", &c.DefaultItemCount},
		{"MAX_ITEM_COUNT", &c.MaxItemCount},
		{"DEFAULT_WINDOW_DAYS", &c.DefaultWindowDays},
		{"RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute},
	}
	for _, item := range ints {
		value, err := getEnvInt(item.key, *item.dst)
		if err != nil {
			return err
		}
		*item.dst = value
	}
	return nil
}

// Validate reports configuration values the server cannot start with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
		if c.DatabasePath == "" {
			return errors.New("database_path is required for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	if c.MaxItemCount < 1 {
		return errors.New("max_item_count must be positive")
	}
	if c.DefaultItemCount < 1 || c.DefaultItemCount > c.MaxItemCount {
		return fmt.Errorf("default_item_count must be between 1 and %d", c.MaxItemCount)
	}
	if c.DefaultWindowDays < 1 {
		return errors.New("default_window_days must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("rate_limit_per_minute must not be negative")
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}
