// Package config loads and validates the podstore configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (PODSTORE_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the podstore configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// BaseURL is the base identifier of the resource namespace. Every
	// identifier the store accepts must fall under it.
	BaseURL string `mapstructure:"base_url" validate:"required,uri" yaml:"base_url"`

	// Store selects and configures the storage backend.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Metrics controls Prometheus instrumentation.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR" yaml:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	// Backend is one of "memory", "filesystem", or "badger".
	Backend string `mapstructure:"backend" validate:"required,oneof=memory filesystem badger" yaml:"backend"`

	// Filesystem configures the filesystem backend.
	Filesystem FilesystemConfig `mapstructure:"filesystem" yaml:"filesystem"`

	// Badger configures the BadgerDB backend.
	Badger BadgerConfig `mapstructure:"badger" yaml:"badger"`
}

// FilesystemConfig configures the filesystem backend.
type FilesystemConfig struct {
	// Root is the backing directory for resource storage.
	Root string `mapstructure:"root" yaml:"root"`

	// MetadataSuffix names sidecar metadata files.
	MetadataSuffix string `mapstructure:"metadata_suffix" yaml:"metadata_suffix"`
}

// BadgerConfig configures the BadgerDB backend.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string `mapstructure:"path" yaml:"path"`

	// InMemory runs Badger without persistence.
	InMemory bool `mapstructure:"in_memory" yaml:"in_memory"`
}

// MetricsConfig controls Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Load reads configuration from the given file path (or the default location
// when empty), applies environment overrides, fills defaults, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := Default()
		applyEnv(v, cfg)
		return cfg, Validate(cfg)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the PODSTORE_ prefix with underscores.
	// Example: PODSTORE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("PODSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(DefaultConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. A missing file is
// acceptable; defaults apply.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// applyEnv overlays environment-variable values onto a default config when no
// config file exists at all.
func applyEnv(v *viper.Viper, cfg *Config) {
	if s := v.GetString("logging.level"); s != "" {
		cfg.Logging.Level = s
	}
	if s := v.GetString("logging.format"); s != "" {
		cfg.Logging.Format = s
	}
	if s := v.GetString("base_url"); s != "" {
		cfg.BaseURL = s
	}
	if s := v.GetString("store.backend"); s != "" {
		cfg.Store.Backend = s
	}
	if s := v.GetString("store.filesystem.root"); s != "" {
		cfg.Store.Filesystem.Root = s
	}
	if s := v.GetString("store.badger.path"); s != "" {
		cfg.Store.Badger.Path = s
	}
}

// configDecodeHooks returns the decode hooks for custom config types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(durationDecodeHook())
}

// durationDecodeHook converts strings like "30s" to time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) || from.Kind() != reflect.String {
			return data, nil
		}
		return time.ParseDuration(data.(string))
	}
}

// DefaultConfigDir returns the directory searched for the config file:
// $XDG_CONFIG_HOME/podstore, falling back to ~/.config/podstore.
func DefaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "podstore")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "podstore")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
