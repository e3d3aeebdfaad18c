// Package config loads runtime configuration for the career portal.
package config

import (
	"fmt"
	"strings"

	"github.com/jonathan/career-portal/internal/activity"
	"github.com/spf13/viper"
)

// AppConfig is the server configuration. Every key can come from the optional
// config file or from the environment variable of the same name in upper
// snake case (database_url -> DATABASE_URL).
type AppConfig struct {
	Port              int    `mapstructure:"port"`
	DatabaseURL       string `mapstructure:"database_url"`
	RedisAddr         string `mapstructure:"redis_addr"`
	LogJSON           bool   `mapstructure:"log_json"`
	LogDebug          bool   `mapstructure:"log_debug"`
	ActivityCacheSize int    `mapstructure:"activity_cache_size"` // users kept in the in-memory recent-activity cache
	ActivityPolicy    string `mapstructure:"activity_policy"`     // best_effort or strict
}

var configKeys = []string{
	"port",
	"database_url",
	"redis_addr",
	"log_json",
	"log_debug",
	"activity_cache_size",
	"activity_policy",
}

// NewViper returns a viper instance with the portal defaults and environment
// bindings applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("log_json", false)
	v.SetDefault("log_debug", false)
	v.SetDefault("activity_cache_size", 1000)
	v.SetDefault("activity_policy", string(activity.PolicyBestEffort))

	for _, key := range configKeys {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}
	return v
}

// Load reads configuration from path (skipped when empty) and the environment.
// Environment values win over the file.
func Load(path string) (*AppConfig, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ActivityPolicy = strings.ToLower(strings.TrimSpace(cfg.ActivityPolicy))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has usable values. DATABASE_URL is
// not checked here since only commands that touch the database need it.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.ActivityCacheSize < 1 {
		return fmt.Errorf("config error: 'activity_cache_size' must be positive, got %d", c.ActivityCacheSize)
	}
	switch activity.Policy(c.ActivityPolicy) {
	case activity.PolicyBestEffort, activity.PolicyStrict:
	default:
		return fmt.Errorf("config error: 'activity_policy' must be %q or %q, got %q", activity.PolicyBestEffort, activity.PolicyStrict, c.ActivityPolicy)
	}
	return nil
}

// RequireDatabase returns an error when no database URL is configured.
func (c *AppConfig) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
