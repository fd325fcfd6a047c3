// Copyright 2026 Elasticsearch B.V.
// SPDX-License-Identifier: Apache-2.0

// Package config provides centralized configuration management for esmetrics.
// It supports deterministic precedence (flags > env > config file > defaults)
// using Viper, and fail-fast validation to prevent silent misconfiguration.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config holds all application configuration.
type Config struct {
	ES  ESConfig  `mapstructure:"es"`
	Log LogConfig `mapstructure:"log"`
}

// ESConfig holds Elasticsearch connection settings.
// The port is fixed; see es.DefaultPort.
type ESConfig struct {
	Host    string        `mapstructure:"host"`    // Hostname or IP
	Timeout time.Duration `mapstructure:"timeout"` // Deadline for ping + query
	Sniff   bool          `mapstructure:"sniff"`   // Discover cluster nodes on start
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"` // zap level name
}

// Default configuration values.
const (
	DefaultHost     = "127.0.0.1"
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "warn"
)

// EnvPrefix is prepended to every environment variable, e.g. ESMETRICS_ES_HOST.
const EnvPrefix = "ESMETRICS"

// ContextKey is used to store config in context.
type ContextKey struct{}

// FromContext retrieves Config from context.
func FromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(ContextKey{}).(Config)
	return cfg, ok
}

// WithContext stores Config in context.
func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, ContextKey{}, cfg)
}

// Load builds a Config using Viper with precedence: flags > env > config file > defaults.
// It binds flags from the command (and its parents) and fails fast on invalid values.
// The config file is only read when the "config" flag is set.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindFlagsRecursive(v, cmd); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	if path := configFile(cmd); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ES.Host = strings.TrimSpace(cfg.ES.Host)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers default values with Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("es.host", DefaultHost)
	v.SetDefault("es.timeout", DefaultTimeout)
	v.SetDefault("es.sniff", false)

	v.SetDefault("log.level", DefaultLogLevel)
}

func configFile(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
				return f.Value.String()
			}
		}
	}
	return ""
}

// bindFlagsRecursive binds flags from cmd and all parents so Viper sees them.
func bindFlagsRecursive(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	if err := bindFlagSet(v, cmd.Flags()); err != nil {
		return err
	}
	if err := bindFlagSet(v, cmd.PersistentFlags()); err != nil {
		return err
	}
	return bindFlagsRecursive(v, cmd.Parent())
}

// flagToKey maps flag names to nested Viper keys. Flags that select the
// metric (cluster, node, list) are not configuration and stay unbound.
var flagToKey = map[string]string{
	"host":      "es.host",
	"timeout":   "es.timeout",
	"sniff":     "es.sniff",
	"log-level": "log.level",
}

// bindFlagSet binds flags to Viper keys using explicit mappings to nested keys.
func bindFlagSet(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagToKey[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("%s: %w", f.Name, err)
		}
	})
	return bindErr
}

// Validate enforces correctness and fails fast on invalid configuration.
func (c Config) Validate() error {
	if c.ES.Host == "" {
		return fmt.Errorf("es.host is required")
	}
	if strings.Contains(c.ES.Host, "://") || strings.Contains(c.ES.Host, "/") {
		return fmt.Errorf("es.host must be a hostname or IP, got %q", c.ES.Host)
	}
	if c.ES.Timeout <= 0 {
		return fmt.Errorf("es.timeout must be > 0")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
