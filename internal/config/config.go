// Package config loads gateway configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the gateway's full configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	NATS    NATSConfig    `mapstructure:"nats"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Logging LoggingConfig `mapstructure:"logging"`
	Routes  RoutesConfig  `mapstructure:"routes"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// AuthConfig holds token validation and refresh configuration. JWTSecret is
// the symmetric key shared with the auth service.
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	ServiceURL     string        `mapstructure:"service_url"`
	RefreshPath    string        `mapstructure:"refresh_path"`
	CookieName     string        `mapstructure:"cookie_name"`
	RefreshTimeout time.Duration `mapstructure:"refresh_timeout"`
}

// RedisConfig holds the revocation store connection settings.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// ProxyConfig holds downstream forwarding settings.
type ProxyConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// NATSConfig holds optional audit event publishing settings.
type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// CORSConfig holds the allowed frontend origins.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RoutesConfig points at the route/exemption table file. An empty file path
// uses the built-in defaults.
type RoutesConfig struct {
	File string `mapstructure:"file"`
}

// Load reads configuration from configPath (or ./config.yaml and
// /etc/contestapp/gateway when empty) with GATEWAY_-prefixed environment
// variable overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("auth.jwt_secret", "change-this-in-production")
	v.SetDefault("auth.service_url", "http://member-service:8081")
	v.SetDefault("auth.refresh_path", "/auth/refresh")
	v.SetDefault("auth.cookie_name", "auth_token")
	v.SetDefault("auth.refresh_timeout", "10s")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("proxy.timeout", "30s")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://nats:4222")
	v.SetDefault("nats.subject", "contestapp.gateway.auth")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("routes.file", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/contestapp/gateway")
	}

	v.SetEnvPrefix("GATEWAY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine (defaults + env apply); a broken file is not.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
