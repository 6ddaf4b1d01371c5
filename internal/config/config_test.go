package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestLoadDefaults tests that default configuration values are loaded correctly.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	if cfg.Container.Timeout != 2*time.Minute {
		t.Errorf("Expected default container timeout 2m, got %v", cfg.Container.Timeout)
	}
	if cfg.Container.PingPath != "/" {
		t.Errorf("Expected default ping path '/', got '%s'", cfg.Container.PingPath)
	}
	if cfg.Container.PostStopDelay != 5*time.Second {
		t.Errorf("Expected default post stop delay 5s, got %v", cfg.Container.PostStopDelay)
	}
	if cfg.Container.ScratchDir != os.TempDir() {
		t.Errorf("Expected default scratch dir '%s', got '%s'", os.TempDir(), cfg.Container.ScratchDir)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default logging format 'text', got '%s'", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected default logging output 'stderr', got '%s'", cfg.Logging.Output)
	}

	if cfg.Daemon.Address() != "localhost:18000" {
		t.Errorf("Expected default daemon address 'localhost:18000', got '%s'", cfg.Daemon.Address())
	}
	if cfg.Daemon.AutostartInterval != 10*time.Second {
		t.Errorf("Expected default autostart interval 10s, got %v", cfg.Daemon.AutostartInterval)
	}
	if cfg.Daemon.RateLimit != 20 {
		t.Errorf("Expected default rate limit 20, got %d", cfg.Daemon.RateLimit)
	}
	if cfg.Daemon.AuthEnabled {
		t.Errorf("Expected default auth_enabled false")
	}
	if cfg.Daemon.TokenExpiration != 24*time.Hour {
		t.Errorf("Expected default token expiration 24h, got %v", cfg.Daemon.TokenExpiration)
	}
	if len(cfg.Overrides) != 0 {
		t.Errorf("Expected no overrides, got %v", cfg.Overrides)
	}
}

// TestLoadFile tests reading a YAML configuration file.
func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cargo.yaml")
	content := `
container:
  timeout: 30s
  ping_path: /health
daemon:
  port: 19000
  auth_enabled: true
  jwt_secret: s3cret
overrides:
  - cargo.servlet.port=9090
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Container.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", cfg.Container.Timeout)
	}
	if cfg.Container.PingPath != "/health" {
		t.Errorf("Expected ping path '/health', got '%s'", cfg.Container.PingPath)
	}
	if cfg.Daemon.Port != 19000 || !cfg.Daemon.AuthEnabled {
		t.Errorf("Expected daemon port 19000 with auth, got %d/%v", cfg.Daemon.Port, cfg.Daemon.AuthEnabled)
	}
	if len(cfg.Overrides) != 1 || cfg.Overrides[0] != "cargo.servlet.port=9090" {
		t.Errorf("Expected one override, got %v", cfg.Overrides)
	}
}

// TestValidation tests the configuration validation logic.
func TestValidation(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Daemon:  DaemonConfig{Port: 18000},
			Logging: LoggingConfig{Format: "text"},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
		errMsg    string
	}{
		{
			name:   "valid configuration",
			mutate: func(*Config) {},
		},
		{
			name:      "invalid port - too low",
			mutate:    func(c *Config) { c.Daemon.Port = 0 },
			expectErr: true,
			errMsg:    "invalid daemon port",
		},
		{
			name:      "invalid port - too high",
			mutate:    func(c *Config) { c.Daemon.Port = 70000 },
			expectErr: true,
			errMsg:    "invalid daemon port",
		},
		{
			name:      "negative timeout",
			mutate:    func(c *Config) { c.Container.Timeout = -time.Second },
			expectErr: true,
			errMsg:    "must not be negative",
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.Logging.Format = "xml" },
			expectErr: true,
			errMsg:    "invalid logging format",
		},
		{
			name:      "auth without secret",
			mutate:    func(c *Config) { c.Daemon.AuthEnabled = true },
			expectErr: true,
			errMsg:    "jwt_secret is required",
		},
		{
			name:      "malformed override",
			mutate:    func(c *Config) { c.Overrides = []string{"cargo.servlet.port"} },
			expectErr: true,
			errMsg:    "expected name=value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.expectErr {
				if err == nil {
					t.Errorf("Expected error containing '%s', got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

// TestEnvironmentVariableOverride tests that environment variables override config values.
func TestEnvironmentVariableOverride(t *testing.T) {
	t.Setenv("CARGO_DAEMON_PORT", "9999")
	t.Setenv("CARGO_DAEMON_HOST", "127.0.0.1")
	t.Setenv("CARGO_CONTAINER_TIMEOUT", "45s")

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Daemon.Port != 9999 {
		t.Errorf("Expected port 9999 from environment, got %d", cfg.Daemon.Port)
	}
	if cfg.Daemon.Host != "127.0.0.1" {
		t.Errorf("Expected host '127.0.0.1' from environment, got '%s'", cfg.Daemon.Host)
	}
	if cfg.Container.Timeout != 45*time.Second {
		t.Errorf("Expected timeout 45s from environment, got %v", cfg.Container.Timeout)
	}
}

// TestPropertyOverrides tests the flag, environment, file precedence.
func TestPropertyOverrides(t *testing.T) {
	cfg := &Config{Overrides: []string{"cargo.servlet.port=7000", "cargo.rmi.port=7099", "cargo.hostname=file"}}
	t.Setenv("CARGO_SERVLET_PORT", "8091")
	t.Setenv("CARGO_HOSTNAME", "env")

	lookup, err := cfg.PropertyOverrides(map[string]string{"cargo.hostname": "flag"})
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"cargo.hostname":     "flag",
		"cargo.servlet.port": "8091",
		"cargo.rmi.port":     "7099",
	}
	for name, want := range cases {
		if got, ok := lookup(name); !ok || got != want {
			t.Errorf("%s: expected %q, got %q (found %v)", name, want, got, ok)
		}
	}
	if _, ok := lookup("cargo.protocol"); ok {
		t.Errorf("Expected cargo.protocol not to be overridden")
	}
}

// TestParseOverrides tests name=value parsing.
func TestParseOverrides(t *testing.T) {
	m, err := ParseOverrides([]string{"a=1", " b =x=y"})
	if err != nil {
		t.Fatal(err)
	}
	if m["a"] != "1" || m["b"] != "x=y" {
		t.Errorf("Unexpected overrides: %v", m)
	}
	if _, err := ParseOverrides([]string{"=1"}); err == nil {
		t.Errorf("Expected error for empty name")
	}
}

// TestGet tests the global config getter.
func TestGet(t *testing.T) {
	if _, err := Load("nonexistent.yaml"); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	retrieved := Get()
	if retrieved == nil {
		t.Fatal("Get() returned nil")
	}
	if retrieved.Daemon.Port != 18000 {
		t.Errorf("Expected port 18000 from Get(), got %d", retrieved.Daemon.Port)
	}
}
