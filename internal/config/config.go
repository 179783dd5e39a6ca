package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache drivers
const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Upstream struct {
		BaseURL     string `yaml:"base_url" env:"UPSTREAM_BASE_URL"`
		Timeout     string `yaml:"timeout" env:"UPSTREAM_TIMEOUT"`
		MaxPageWalk int    `yaml:"max_page_walk" env:"UPSTREAM_MAX_PAGE_WALK"`
	} `yaml:"upstream"`

	Cache struct {
		Driver          string `yaml:"driver" env:"CACHE_DRIVER"`
		TTL             string `yaml:"ttl" env:"CACHE_TTL"`
		CleanupInterval string `yaml:"cleanup_interval" env:"CACHE_CLEANUP_INTERVAL"`
		RedisAddr       string `yaml:"redis_addr" env:"CACHE_REDIS_ADDR"`
		RedisPassword   string `yaml:"redis_password" env:"CACHE_REDIS_PASSWORD"`
		RedisDB         int    `yaml:"redis_db" env:"CACHE_REDIS_DB"`
		KeyPrefix       string `yaml:"key_prefix" env:"CACHE_KEY_PREFIX"`
	} `yaml:"cache"`

	Database struct {
		Enabled         bool   `yaml:"enabled" env:"DB_ENABLED"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		// LedgerRetention bounds how long idempotency records are kept
		LedgerRetention string `yaml:"ledger_retention" env:"DB_LEDGER_RETENTION"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Events struct {
		NatsURL       string `yaml:"nats_url" env:"EVENTS_NATS_URL"`
		StreamName    string `yaml:"stream_name" env:"EVENTS_STREAM_NAME"`
		SubjectPrefix string `yaml:"subject_prefix" env:"EVENTS_SUBJECT_PREFIX"`
	} `yaml:"events"`

	Realtime struct {
		Enabled bool `yaml:"enabled" env:"REALTIME_ENABLED"`
	} `yaml:"realtime"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// The file is optional; defaults and env vars are enough to start
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	// Upstream defaults
	config.Upstream.BaseURL = "http://localhost:3000/api"
	config.Upstream.Timeout = "15s"
	config.Upstream.MaxPageWalk = 20

	// Cache defaults
	config.Cache.Driver = CacheDriverMemory
	config.Cache.TTL = "5m"
	config.Cache.CleanupInterval = "10m"
	config.Cache.RedisAddr = "localhost:6379"
	config.Cache.KeyPrefix = "engage:"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "engage_gateway"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.LedgerRetention = "720h"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "1h"

	// Events defaults
	config.Events.StreamName = "ENGAGE"
	config.Events.SubjectPrefix = "engage"

	config.Realtime.Enabled = true

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(reflect.ValueOf(config))
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	u, err := url.Parse(config.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream base URL must be an absolute URL, got %q", config.Upstream.BaseURL)
	}

	durations := map[string]string{
		"upstream timeout":            config.Upstream.Timeout,
		"cache ttl":                   config.Cache.TTL,
		"cache cleanup interval":      config.Cache.CleanupInterval,
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
	}
	if config.Database.Enabled {
		durations["database connection max lifetime"] = config.Database.ConnMaxLifetime
		durations["ledger retention"] = config.Database.LedgerRetention
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch strings.ToLower(config.Cache.Driver) {
	case CacheDriverMemory:
	case CacheDriverRedis:
		if config.Cache.RedisAddr == "" {
			return fmt.Errorf("redis address is required for the redis cache driver")
		}
	default:
		return fmt.Errorf("unknown cache driver %q", config.Cache.Driver)
	}

	if config.Database.Enabled && config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.Database.User),
		url.QueryEscape(c.Database.Password),
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
