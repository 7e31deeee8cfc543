package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const defaultMaxFileSize = 10 << 20

// Config is the runtime configuration of the API server, the migration command and
// the background jobs.
type Config struct {
	Port        int
	DatabaseURL string

	Redis RedisConfig
	MinIO MinIOConfig

	JWTSecret string

	Timezone    string
	MaxFileSize int64
	// LegacyDateFallback keeps feature dates that fail to parse by storing
	// today's date instead of skipping the feature.
	LegacyDateFallback bool

	ExpiryScanInterval    time.Duration
	ExpiryAlertDays       int
	DashboardCacheTTL     time.Duration
	DashboardRefreshEvery time.Duration

	LogLevel  string
	LogFormat string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

var keys = map[string]any{
	"port":                       8080,
	"database_url":               "",
	"redis_addr":                 "localhost:6379",
	"redis_password":             "",
	"redis_db":                   0,
	"minio_endpoint":             "localhost:9000",
	"minio_access_key":           "minioadmin",
	"minio_secret_key":           "minioadmin",
	"minio_use_ssl":              false,
	"license_bucket":             "license-files",
	"jwt_secret":                 "",
	"timezone":                   "Asia/Seoul",
	"max_file_size":              defaultMaxFileSize,
	"legacy_date_fallback":       false,
	"expiry_scan_interval":       "1h",
	"expiry_alert_days":          30,
	"dashboard_cache_ttl":        "5m",
	"dashboard_refresh_interval": "10m",
	"log_level":                  "info",
	"log_format":                 "text",
}

// Load reads .env if present, then an optional config file named by CONFIG_NAME
// (default "config", TOML, in ./config or .), then environment variables. Later
// sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	configName := "config"
	if name := os.Getenv("CONFIG_NAME"); name != "" {
		configName = name
	}
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	for key, def := range keys {
		v.SetDefault(key, def)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"timezone": cfg.Timezone,
		"bucket":   cfg.MinIO.Bucket,
		"auth":     cfg.AuthEnabled(),
	}).Info("config parsed")
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:        v.GetInt("port"),
		DatabaseURL: v.GetString("database_url"),
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("minio_endpoint"),
			AccessKey: v.GetString("minio_access_key"),
			SecretKey: v.GetString("minio_secret_key"),
			UseSSL:    v.GetBool("minio_use_ssl"),
			Bucket:    v.GetString("license_bucket"),
		},
		JWTSecret:             v.GetString("jwt_secret"),
		Timezone:              v.GetString("timezone"),
		MaxFileSize:           v.GetInt64("max_file_size"),
		LegacyDateFallback:    v.GetBool("legacy_date_fallback"),
		ExpiryScanInterval:    v.GetDuration("expiry_scan_interval"),
		ExpiryAlertDays:       v.GetInt("expiry_alert_days"),
		DashboardCacheTTL:     v.GetDuration("dashboard_cache_ttl"),
		DashboardRefreshEvery: v.GetDuration("dashboard_refresh_interval"),
		LogLevel:              v.GetString("log_level"),
		LogFormat:             v.GetString("log_format"),
	}
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// AuthEnabled reports whether write routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// RequireDatabase fails when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	return nil
}
