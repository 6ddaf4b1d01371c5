// Package config provides application configuration for the cargo CLI and
// daemon.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files
//   - Environment variables (with CARGO_ prefix)
//   - .env files
//   - Default values
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./cargo.yaml, ./configs/cargo.yaml, ~/.cargo/cargo.yaml, /etc/cargo/cargo.yaml)
//  3. .env files
//  4. Environment variables (CARGO_ prefix)
//
// # Usage Example
//
//	cfg, err := config.Load("configs/cargo.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Daemon: %s:%d\n", cfg.Daemon.Host, cfg.Daemon.Port)
//
// # Environment Variables
//
// Use CARGO_ prefix and underscores for nested keys:
//   - CARGO_DAEMON_PORT=18000
//   - CARGO_CONTAINER_TIMEOUT=3m
//   - CARGO_LOGGING_LEVEL=debug
//
// # Property Overrides
//
// Container properties can be overridden from outside a run descriptor,
// the way system properties override a build: -D flags, then environment
// variables named after the property (cargo.servlet.port is read from
// CARGO_SERVLET_PORT), then the overrides list of the configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/codehaus-cargo/cargo-sub009/internal/property"
)

// Config is the root configuration structure.
type Config struct {
	// Container contains defaults applied to every container run
	Container ContainerConfig `mapstructure:"container"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging"`

	// Daemon contains the remote control daemon settings
	Daemon DaemonConfig `mapstructure:"daemon"`

	// Overrides are name=value property overrides applied to every configuration
	Overrides []string `mapstructure:"overrides"`
}

// ContainerConfig contains container runtime defaults.
type ContainerConfig struct {
	// Timeout bounds start and stop readiness waits (default: 2m, 0 disables waiting)
	Timeout time.Duration `mapstructure:"timeout"`

	// PingPath is the path probed for readiness (default: /)
	PingPath string `mapstructure:"ping_path"`

	// PostStopDelay is the pause after a container stopped responding (default: 5s)
	PostStopDelay time.Duration `mapstructure:"post_stop_delay"`

	// ScratchDir holds standalone configurations created without a home
	ScratchDir string `mapstructure:"scratch_dir"`

	// OutputDir is where container output logs are written when a descriptor sets none
	OutputDir string `mapstructure:"output_dir"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level"`

	// Format is the log format (text, json, logfmt)
	Format string `mapstructure:"format"`

	// Output is the log destination (stderr, stdout or a file path)
	Output string `mapstructure:"output"`
}

// DaemonConfig contains daemon server settings.
type DaemonConfig struct {
	// Host is the bind address (default: localhost)
	Host string `mapstructure:"host"`

	// Port is the listen port (default: 18000)
	Port int `mapstructure:"port"`

	// Workspace stores the handle database, uploaded descriptors and logs
	Workspace string `mapstructure:"workspace"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AutostartInterval is how often stopped autostart handles are restarted
	AutostartInterval time.Duration `mapstructure:"autostart_interval"`

	// RateLimit is the maximum requests per second per client
	RateLimit int `mapstructure:"rate_limit"`

	// AuthEnabled enables JWT authentication
	AuthEnabled bool `mapstructure:"auth_enabled"`

	// JWTSecret is the secret key for signing JWT tokens
	JWTSecret string `mapstructure:"jwt_secret"`

	// TokenExpiration is the JWT token lifetime (default: 24h)
	TokenExpiration time.Duration `mapstructure:"token_expiration"`
}

// Address returns host:port.
func (d DaemonConfig) Address() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

var cfg *Config

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for cargo.yaml in standard locations.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("cargo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.cargo")
		v.AddConfigPath("/etc/cargo")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			// A missing explicit file falls back to defaults.
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix("CARGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("container.timeout", "2m")
	v.SetDefault("container.ping_path", "/")
	v.SetDefault("container.post_stop_delay", "5s")
	v.SetDefault("container.scratch_dir", os.TempDir())
	v.SetDefault("container.output_dir", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("daemon.host", "localhost")
	v.SetDefault("daemon.port", 18000)
	v.SetDefault("daemon.workspace", filepath.Join(os.TempDir(), "cargo", "daemon"))
	v.SetDefault("daemon.read_timeout", "30s")
	v.SetDefault("daemon.write_timeout", "5m")
	v.SetDefault("daemon.shutdown_timeout", "10s")
	v.SetDefault("daemon.autostart_interval", "10s")
	v.SetDefault("daemon.rate_limit", 20)
	v.SetDefault("daemon.auth_enabled", false)
	v.SetDefault("daemon.jwt_secret", "change-me-in-production")
	v.SetDefault("daemon.token_expiration", "24h")

	v.SetDefault("overrides", []string{})
}

func validate(cfg *Config) error {
	if cfg.Daemon.Port < 1 || cfg.Daemon.Port > 65535 {
		return fmt.Errorf("invalid daemon port: %d", cfg.Daemon.Port)
	}

	if cfg.Container.Timeout < 0 {
		return fmt.Errorf("container timeout must not be negative: %s", cfg.Container.Timeout)
	}

	switch cfg.Logging.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if cfg.Daemon.AuthEnabled && cfg.Daemon.JWTSecret == "" {
		return fmt.Errorf("daemon jwt_secret is required when auth is enabled")
	}

	for _, o := range cfg.Overrides {
		if _, _, ok := strings.Cut(o, "="); !ok {
			return fmt.Errorf("invalid property override %q: expected name=value", o)
		}
	}

	return nil
}

// Get returns the configuration loaded last.
func Get() *Config {
	return cfg
}

// ParseOverrides turns name=value pairs into a map.
func ParseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid property override %q: expected name=value", p)
		}
		out[strings.TrimSpace(name)] = value
	}
	return out, nil
}

// EnvLookup reads a property from the environment: cargo.servlet.port is
// looked up as CARGO_SERVLET_PORT.
func EnvLookup() property.Lookup {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return func(name string) (string, bool) {
		if !v.IsSet(name) {
			return "", false
		}
		return v.GetString(name), true
	}
}

// PropertyOverrides builds the override lookup: flags first, then the
// environment, then the configuration file overrides.
func (c *Config) PropertyOverrides(flags map[string]string) (property.Lookup, error) {
	fromFile, err := ParseOverrides(c.Overrides)
	if err != nil {
		return nil, err
	}
	return property.Chain(mapLookup(flags), EnvLookup(), mapLookup(fromFile)), nil
}

func mapLookup(m map[string]string) property.Lookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
