// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/pokerncp/pokerncp/internal/auth"
)

// Config is the full runtime configuration. Sources are merged in
// order: built-in defaults, the optional YAML file, environment
// variables, command-line flags. Later sources win.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Auth     AuthConfig     `koanf:"auth"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
}

type DatabaseConfig struct {
	URL string `koanf:"url"`
}

type ServerConfig struct {
	ListenAddr     string `koanf:"listen_addr"`
	FrontendOrigin string `koanf:"frontend_origin"`
	ProductionMode bool   `koanf:"production_mode"`
}

type AuthConfig struct {
	AccessSecret      string `koanf:"access_secret"`
	RefreshSecret     string `koanf:"refresh_secret"`
	AccessTTLSeconds  int    `koanf:"access_ttl_seconds"`
	RefreshTTLSeconds int    `koanf:"refresh_ttl_seconds"`
	ResetTTLSeconds   int    `koanf:"reset_ttl_seconds"`
}

type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.listen_addr":       ":8080",
		"server.frontend_origin":   "http://localhost:3000",
		"server.production_mode":   false,
		"auth.access_ttl_seconds":  int(auth.DefaultAccessTTL.Seconds()),
		"auth.refresh_ttl_seconds": int(auth.DefaultRefreshTTL.Seconds()),
		"auth.reset_ttl_seconds":   int(auth.DefaultResetTTL.Seconds()),
		"metrics.addr":             ":9090",
		"log.level":                "info",
		"log.format":               "text",
	}
}

// envKeys maps the process environment onto config keys. The names are
// a deployment contract and predate the config file.
var envKeys = map[string]string{
	"DATABASE_URL":        "database.url",
	"LISTEN_ADDR":         "server.listen_addr",
	"PORT":                "server.listen_addr",
	"FRONTEND_ORIGIN":     "server.frontend_origin",
	"PRODUCTION_MODE":     "server.production_mode",
	"ACCESS_SECRET":       "auth.access_secret",
	"REFRESH_SECRET":      "auth.refresh_secret",
	"ACCESS_TTL_SECONDS":  "auth.access_ttl_seconds",
	"REFRESH_TTL_SECONDS": "auth.refresh_ttl_seconds",
	"RESET_TTL_SECONDS":   "auth.reset_ttl_seconds",
	"METRICS_ADDR":        "metrics.addr",
	"LOG_LEVEL":           "log.level",
	"LOG_FORMAT":          "log.format",
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"database-url":    "database.url",
	"listen":          "server.listen_addr",
	"frontend-origin": "server.frontend_origin",
	"production":      "server.production_mode",
	"metrics-addr":    "metrics.addr",
	"log-level":       "log.level",
	"log-format":      "log.format",
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped when missing), environment variables, and flags (may be
// nil). Call Validate before using the result.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "loading defaults")
	}

	if path != "" {
		err := k.Load(file.Provider(path), yaml.Parser())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).
				Wrapf(err, "loading config file")
		}
	}

	envProvider := env.ProviderWithValue("", ".", func(name, value string) (string, interface{}) {
		key, ok := envKeys[name]
		if !ok {
			return "", nil
		}
		if name == "PORT" {
			return key, ":" + value
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "loading environment")
	}

	if flags != nil {
		flagProvider := posflag.ProviderWithValue(flags, ".", k, func(name, value string) (string, interface{}) {
			key, ok := flagKeys[name]
			if !ok {
				return "", nil
			}
			return key, value
		})
		if err := k.Load(flagProvider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "loading flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "decoding config")
	}
	return &cfg, nil
}

// Validate reports the first fatal configuration problem.
func (c *Config) Validate() error {
	errf := func(format string, args ...any) error {
		return oops.Code("CONFIG_INVALID").Errorf(format, args...)
	}
	if c.Auth.AccessSecret == "" {
		return errf("auth.access_secret (ACCESS_SECRET) is required")
	}
	if c.Database.URL == "" {
		return errf("database.url (DATABASE_URL) is required")
	}
	if c.Auth.AccessTTLSeconds <= 0 {
		return errf("auth.access_ttl_seconds must be positive, got %d", c.Auth.AccessTTLSeconds)
	}
	if c.Auth.RefreshTTLSeconds <= 0 {
		return errf("auth.refresh_ttl_seconds must be positive, got %d", c.Auth.RefreshTTLSeconds)
	}
	if c.Auth.ResetTTLSeconds <= 0 {
		return errf("auth.reset_ttl_seconds must be positive, got %d", c.Auth.ResetTTLSeconds)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// CodecConfig translates the auth section into token codec settings.
func (c *Config) CodecConfig() auth.CodecConfig {
	return auth.CodecConfig{
		AccessSecret:  c.Auth.AccessSecret,
		RefreshSecret: c.Auth.RefreshSecret,
		AccessTTL:     time.Duration(c.Auth.AccessTTLSeconds) * time.Second,
		RefreshTTL:    time.Duration(c.Auth.RefreshTTLSeconds) * time.Second,
		ResetTTL:      time.Duration(c.Auth.ResetTTLSeconds) * time.Second,
	}
}
