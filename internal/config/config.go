// Sportline - Sports News Platform Backend
// Copyright 2026 Sportline Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sportlinehq/sportline

// Package config loads service configuration in three layers: built-in
// defaults, an optional YAML file, then SPORTLINE_-prefixed environment
// variables. Later layers win. The merged result is validated before use.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server" validate:"required"`
	Log         LogConfig         `koanf:"log" validate:"required"`
	Data        DataConfig        `koanf:"data"`
	Auth        AuthConfig        `koanf:"auth" validate:"required"`
	RateLimit   RateLimitConfig   `koanf:"ratelimit" validate:"required"`
	Maintenance MaintenanceConfig `koanf:"maintenance" validate:"required"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	BasePath        string        `koanf:"base_path"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DataConfig configures storage. An empty PostgresDSN runs the in-memory
// store; an empty Dir runs BadgerDB in memory (sessions, rate-limit
// windows and cache entries then do not survive restarts).
type DataConfig struct {
	Dir         string `koanf:"dir"`
	PostgresDSN string `koanf:"postgres_dsn"`
}

// AuthConfig configures sessions.
type AuthConfig struct {
	SessionTTL time.Duration `koanf:"session_ttl" validate:"min=1m"`
}

// RateLimitConfig configures the three limiter scopes.
type RateLimitConfig struct {
	Global       int           `koanf:"global" validate:"min=1"`
	GlobalWindow time.Duration `koanf:"global_window" validate:"min=1s"`
	Login        int           `koanf:"login" validate:"min=1"`
	LoginWindow  time.Duration `koanf:"login_window" validate:"min=1s"`
	Write        int           `koanf:"write" validate:"min=1"`
	WriteWindow  time.Duration `koanf:"write_window" validate:"min=1s"`
}

// MaintenanceConfig configures the background sweep cadence.
type MaintenanceConfig struct {
	Interval time.Duration `koanf:"interval" validate:"min=10s"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			BasePath:        "",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Data: DataConfig{
			Dir: "./data",
		},
		Auth: AuthConfig{
			SessionTTL: 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Global:       120,
			GlobalWindow: time.Minute,
			Login:        5,
			LoginWindow:  5 * time.Minute,
			Write:        30,
			WriteWindow:  time.Minute,
		},
		Maintenance: MaintenanceConfig{
			Interval: 10 * time.Minute,
		},
	}
}

const envPrefix = "SPORTLINE_"

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty and the file exists) and the environment.
// SPORTLINE_SERVER_PORT=9090 overrides server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %q: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config file %q: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(key string) string {
		key = strings.TrimPrefix(key, envPrefix)
		return strings.ReplaceAll(strings.ToLower(key), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
