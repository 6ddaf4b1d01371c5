package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codehaus-cargo/cargo-sub009/internal/daemon"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the remote control daemon",
	Long: `Run the daemon that starts, stops and restarts containers on behalf of
remote clients. Handles marked autostart are restarted whenever they are
found stopped.`,
	RunE: runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	r, err := newRegistry()
	if err != nil {
		return err
	}

	d, err := daemon.New(r, cfg.Daemon.Workspace, cfg.Container, logger)
	if err != nil {
		return err
	}
	server := daemon.NewServer(cfg.Daemon, d, logger)

	ctx, stop := signalContext()
	defer stop()

	go d.Run(ctx, cfg.Daemon.AutostartInterval)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		fmt.Println("\n⚠️  Shutdown signal received")
	case serveErr = <-errChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("server shutdown error: %w", err)
	}
	if err := d.Close(shutdownCtx); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}
