package types

import "time"

// StoreConfig holds settings for the catalog database.
type StoreConfig struct {
	// Path is the SQLite database file (default "data/catalog.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxOpenConns caps the connection pool (default 10).
	MaxOpenConns int `json:"max_open_conns" yaml:"max_open_conns" mapstructure:"max_open_conns"`

	// ConnMaxIdleTime closes connections idle longer than this (default 30s).
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxUploadBytes bounds multipart CSV uploads (default 1 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// ReadTimeout is the HTTP server read timeout (default 10s).
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// ShutdownTimeout bounds graceful shutdown (default 5s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Development switches to zap's human-readable development encoder.
	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// Config groups all settings read from skill-catalog.yaml and the
// SKILL_CATALOG_* environment.
type Config struct {
	Database StoreConfig  `json:"database" yaml:"database" mapstructure:"database"`
	Server   ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	Log      LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}
