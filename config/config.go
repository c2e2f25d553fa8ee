package config

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/graphwire/golang-bolt5-driver/errors"
)

// DriverConfig carries the tunables for connections and the pool.
type DriverConfig struct {
	// UserAgent identifies this client in the HELLO message.
	UserAgent string

	// MaxConnectionLifetime is the number of seconds after which the
	// pool treats a connection as stale. Negative means unbounded.
	MaxConnectionLifetime int64

	// ConnectTimeout bounds the TCP dial and protocol handshake.
	ConnectTimeout time.Duration

	// ReadTimeout is the starting transport receive timeout. Servers
	// may override it with the connection.recv_timeout_seconds hint.
	ReadTimeout time.Duration

	// MaxPoolSize caps the total number of pooled connections.
	MaxPoolSize int

	// MaxIdle caps the number of idle connections kept around.
	MaxIdle int

	// MetricsPort exposes prometheus metrics when non-zero.
	MetricsPort int
	MetricsPath string
}

// Default returns the settings used when no config file is given.
func Default() DriverConfig {
	return DriverConfig{
		UserAgent:             "GraphwireBolt/1.0",
		MaxConnectionLifetime: 3600,
		ConnectTimeout:        10 * time.Second,
		ReadTimeout:           10 * time.Second,
		MaxPoolSize:           8,
		MaxIdle:               4,
		MetricsPath:           "/metrics",
	}
}

// driver config.toml key mapping
type fileConfig struct {
	UserAgent             string `toml:"user_agent"`
	MaxConnectionLifetime int64  `toml:"max_connection_lifetime_seconds"`
	ConnectTimeoutSeconds int64  `toml:"connect_timeout_seconds"`
	ReadTimeoutSeconds    int64  `toml:"read_timeout_seconds"`
	MaxPoolSize           int    `toml:"max_pool_size"`
	MaxIdle               int    `toml:"max_idle"`
	MetricsPort           int    `toml:"metrics_port"`
	MetricsPath           string `toml:"metrics_path"`
}

// Load reads a TOML config file, overlaying it onto the defaults.
// Keys absent from the file keep their default values.
func Load(path string) (DriverConfig, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return DriverConfig{}, errors.Wrap(err, "An error occurred loading driver config")
	}

	applyFile(&cfg, raw, meta)
	return cfg, nil
}

// Parse reads TOML config from a string, overlaying it onto the defaults.
func Parse(data string) (DriverConfig, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return DriverConfig{}, errors.Wrap(err, "An error occurred parsing driver config")
	}

	applyFile(&cfg, raw, meta)
	return cfg, nil
}

func applyFile(cfg *DriverConfig, raw fileConfig, meta toml.MetaData) {
	if meta.IsDefined("user_agent") {
		cfg.UserAgent = strings.TrimSpace(raw.UserAgent)
	}
	if meta.IsDefined("max_connection_lifetime_seconds") {
		cfg.MaxConnectionLifetime = raw.MaxConnectionLifetime
	}
	if meta.IsDefined("connect_timeout_seconds") {
		cfg.ConnectTimeout = time.Duration(raw.ConnectTimeoutSeconds) * time.Second
	}
	if meta.IsDefined("read_timeout_seconds") {
		cfg.ReadTimeout = time.Duration(raw.ReadTimeoutSeconds) * time.Second
	}
	if meta.IsDefined("max_pool_size") {
		cfg.MaxPoolSize = raw.MaxPoolSize
	}
	if meta.IsDefined("max_idle") {
		cfg.MaxIdle = raw.MaxIdle
	}
	if meta.IsDefined("metrics_port") {
		cfg.MetricsPort = raw.MetricsPort
	}
	if meta.IsDefined("metrics_path") {
		cfg.MetricsPath = raw.MetricsPath
	}
}
