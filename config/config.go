package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	Webhook  WebhookConfig
}

type ServerConfig struct {
	Address  string
	HTTPPort string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

type AuthConfig struct {
	// JWTSecret пустой — авторизация выключена (dev-режим).
	JWTSecret string
}

type WebhookConfig struct {
	Timeout time.Duration
}

// Load читает YAML-конфиг (path может быть пустым) с env-оверрайдами FLEET_*.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("webhook.timeout", "5s")

	v.SetEnvPrefix("FLEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Address:  v.GetString("server.address"),
			HTTPPort: v.GetString("server.http_port"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			File:   v.GetString("logging.file"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
		},
		Webhook: WebhookConfig{
			Timeout: v.GetDuration("webhook.timeout"),
		},
	}
	return cfg, nil
}
