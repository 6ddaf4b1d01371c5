package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codehaus-cargo/cargo-sub009/internal/config"
	"github.com/codehaus-cargo/cargo-sub009/internal/logging"
	"github.com/codehaus-cargo/cargo-sub009/internal/version"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     *log.Logger
	logCloser  io.Closer
	properties []string
)

var rootCmd = &cobra.Command{
	Use:   "cargo",
	Short: "Start, stop and configure application servers",
	Long: `Cargo drives application servers through one API whatever the
server: it creates their configuration, starts and stops them, deploys
archives and packages the result.

A run descriptor (YAML) names the container, its configuration and the
deployables. Properties may be overridden with -D name=value.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func Execute() error {
	rootCmd.Version = version.Version
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./cargo.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json, logfmt)")
	rootCmd.PersistentFlags().StringArrayVarP(&properties, "define", "D", nil, "override a container property (name=value)")

	// These should never fail as flags are defined above
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))   //nolint:errcheck
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format")) //nolint:errcheck

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(undeployCmd)
	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(tokenCmd)

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging applies the logging flags over the loaded configuration.
func setupLogging(cmd *cobra.Command, args []string) error {
	lc := cfg.Logging
	if level := viper.GetString("logging.level"); level != "" {
		lc.Level = level
	}
	if format := viper.GetString("logging.format"); format != "" {
		lc.Format = format
	}

	var err error
	logger, logCloser, err = logging.New(lc)
	if err != nil {
		return err
	}
	log.SetDefault(logger)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Println(info.String())

		if cmd.Flag("verbose").Changed {
			fmt.Printf("\nDetails:\n")
			fmt.Printf("  Version:    %s\n", info.Version)
			fmt.Printf("  Git Commit: %s\n", info.GitCommit)
			fmt.Printf("  Built:      %s\n", info.BuildTime)
			fmt.Printf("  Go Version: %s\n", info.GoVersion)
			fmt.Printf("  Platform:   %s\n", info.Platform)
		}
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "verbose version output")
}
