package config

import "github.com/marmos91/podstore/pkg/accessor/file"

// Default returns the default configuration: an in-memory store under a
// localhost base, text logging at INFO.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stderr",
		},
		BaseURL: "http://localhost:3000/",
		Store: StoreConfig{
			Backend: "memory",
			Filesystem: FilesystemConfig{
				Root:           "./data",
				MetadataSuffix: file.DefaultMetadataSuffix,
			},
			Badger: BadgerConfig{
				Path: "./data/badger",
			},
		},
	}
}

// ApplyDefaults fills in defaults for any missing values.
func ApplyDefaults(cfg *Config) {
	def := Default()
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = def.Logging.Output
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = def.Store.Backend
	}
	if cfg.Store.Filesystem.Root == "" {
		cfg.Store.Filesystem.Root = def.Store.Filesystem.Root
	}
	if cfg.Store.Filesystem.MetadataSuffix == "" {
		cfg.Store.Filesystem.MetadataSuffix = def.Store.Filesystem.MetadataSuffix
	}
	if cfg.Store.Badger.Path == "" {
		cfg.Store.Badger.Path = def.Store.Badger.Path
	}
}
