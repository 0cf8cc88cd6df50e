// Package config loads citycore settings from defaults, an optional YAML file,
// a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Data sources for the reference dataset
const (
	SourceEmbedded = "embedded"
	SourcePostgres = "postgres"
)

// ConfigPathEnv names the variable holding the YAML config path
const ConfigPathEnv = "CITYCORE_CONFIG"

// Config is the full application configuration
type Config struct {
	API      APIConfig      `yaml:"api"`
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Places   PlacesConfig   `yaml:"places"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig configures the HTTP server
type APIConfig struct {
	Port        int    `yaml:"port"`
	Env         string `yaml:"env"`
	CORSOrigins string `yaml:"cors_allow_origins"`
}

// DataConfig selects where reference data is loaded from
type DataConfig struct {
	Source string `yaml:"source"`
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MinConns int32  `yaml:"min_conns"`
	MaxConns int32  `yaml:"max_conns"`
}

// RedisConfig holds Redis settings. When disabled an in-process cache is used.
type RedisConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	TLSEnabled bool          `yaml:"tls_enabled"`
	MutexTTL   time.Duration `yaml:"mutex_ttl"`
}

// PlacesConfig configures AI place generation
type PlacesConfig struct {
	APIKey          string        `yaml:"api_key"`
	Model           string        `yaml:"model"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	GenerateTimeout time.Duration `yaml:"generate_timeout"`
	RateLimit       int           `yaml:"rate_limit"`
	RateWindow      time.Duration `yaml:"rate_window"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		API: APIConfig{
			Port:        8080,
			Env:         "development",
			CORSOrigins: "*",
		},
		Data: DataConfig{
			Source: SourceEmbedded,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "citycore",
			User:     "postgres",
			SSLMode:  "disable",
			MinConns: 2,
			MaxConns: 10,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     6379,
			MutexTTL: 30 * time.Second,
		},
		Places: PlacesConfig{
			Model:           "gemini-2.0-flash",
			CacheTTL:        24 * time.Hour,
			GenerateTimeout: 25 * time.Second,
			RateLimit:       5,
			RateWindow:      time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. A missing YAML file or .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Validate checks settings that would otherwise fail at runtime
func (c *Config) Validate() error {
	var errs []error

	if c.Data.Source != SourceEmbedded && c.Data.Source != SourcePostgres {
		errs = append(errs, fmt.Errorf("unknown data source %q", c.Data.Source))
	}
	if c.API.Port <= 0 {
		errs = append(errs, errors.New("api port must be positive"))
	}
	if c.Data.Source == SourcePostgres && c.Database.Port <= 0 {
		errs = append(errs, errors.New("database port must be positive"))
	}
	if c.Redis.Enabled && c.Redis.Port <= 0 {
		errs = append(errs, errors.New("redis port must be positive"))
	}
	if c.Places.RateLimit < 0 {
		errs = append(errs, errors.New("generate rate limit must not be negative"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.API.Env == "development"
}

// UsePostgres reports whether reference data comes from the database
func (c *Config) UsePostgres() bool {
	return c.Data.Source == SourcePostgres
}

// CORSOrigins returns the configured origins, falling back to "*"
func (c *Config) CORSOrigins() string {
	if strings.TrimSpace(c.API.CORSOrigins) == "" {
		return "*"
	}
	return c.API.CORSOrigins
}

func (c *Config) applyEnvOverrides() error {
	var errs []error

	setString(&c.API.Env, "APP_ENV")
	setString(&c.API.CORSOrigins, "CORS_ALLOW_ORIGINS")
	setString(&c.Data.Source, "DATA_SOURCE")
	errs = append(errs, setInt(&c.API.Port, "API_PORT"))

	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.SSLMode, "DB_SSLMODE")
	errs = append(errs,
		setInt(&c.Database.Port, "DB_PORT"),
		setInt32(&c.Database.MinConns, "DB_MIN_CONNS"),
		setInt32(&c.Database.MaxConns, "DB_MAX_CONNS"),
	)

	setString(&c.Redis.Host, "REDIS_HOST")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	errs = append(errs,
		setBool(&c.Redis.Enabled, "REDIS_ENABLED"),
		setInt(&c.Redis.Port, "REDIS_PORT"),
		setInt(&c.Redis.DB, "REDIS_DB"),
		setBool(&c.Redis.TLSEnabled, "REDIS_TLS_ENABLED"),
		setDuration(&c.Redis.MutexTTL, "CACHE_MUTEX_TTL"),
	)

	setString(&c.Places.APIKey, "GEMINI_API_KEY")
	setString(&c.Places.Model, "GEMINI_MODEL")
	errs = append(errs,
		setDuration(&c.Places.CacheTTL, "PLACES_CACHE_TTL"),
		setDuration(&c.Places.GenerateTimeout, "GENERATE_TIMEOUT"),
		setInt(&c.Places.RateLimit, "GENERATE_RATE_LIMIT"),
		setDuration(&c.Places.RateWindow, "GENERATE_RATE_WINDOW"),
	)

	setString(&c.Log.Level, "LOG_LEVEL")

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt32(dst *int32, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = int32(n)
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
