package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runShowConfig,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	RunE:  runInitConfig,
}

func init() {
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	defaultConfig := `# Cargo Configuration

container:
  timeout: 2m
  ping_path: /
  post_stop_delay: 5s
  output_dir: ""

daemon:
  host: localhost
  port: 18000
  workspace: /var/lib/cargo/daemon
  read_timeout: 30s
  write_timeout: 5m
  shutdown_timeout: 10s
  autostart_interval: 10s
  rate_limit: 20
  auth_enabled: false
  jwt_secret: change-me-in-production
  token_expiration: 24h

logging:
  level: info
  format: text
  output: stderr

# Property overrides applied to every container (name=value)
overrides: []
`

	if _, err := os.Stat("cargo.yaml"); err == nil {
		return fmt.Errorf("cargo.yaml already exists")
	}
	if err := os.WriteFile("cargo.yaml", []byte(defaultConfig), 0644); err != nil {
		return err
	}

	fmt.Println("✓ Created cargo.yaml")
	return nil
}
