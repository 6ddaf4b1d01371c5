package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/codehaus-cargo/cargo-sub009/pkg/client"
)

var (
	remoteURL       string
	remoteToken     string
	remoteAutostart bool
	remoteDelete    bool
	remoteFollow    bool
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Control containers through a cargo daemon",
	Long: `Control containers running under a cargo daemon.

Examples:
  cargo remote start shop tomcat.yaml --autostart
  cargo remote list
  cargo remote log shop --follow
  cargo remote stop shop --delete`,
}

var remoteStartCmd = &cobra.Command{
	Use:   "start [handle] [descriptor]",
	Short: "Start a descriptor under a handle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read descriptor: %w", err)
		}
		c, err := remoteClient()
		if err != nil {
			return err
		}
		if err := c.Start(cmd.Context(), args[0], string(data), remoteAutostart); err != nil {
			return err
		}
		fmt.Printf("✓ %s started\n", args[0])
		return nil
	},
}

var remoteRestartCmd = &cobra.Command{
	Use:   "restart [handle]",
	Short: "Restart a handle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := remoteClient()
		if err != nil {
			return err
		}
		if err := c.Restart(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ %s restarted\n", args[0])
		return nil
	},
}

var remoteStopCmd = &cobra.Command{
	Use:   "stop [handle]",
	Short: "Stop a handle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := remoteClient()
		if err != nil {
			return err
		}
		if err := c.Stop(cmd.Context(), args[0], remoteDelete); err != nil {
			return err
		}
		fmt.Printf("✓ %s stopped\n", args[0])
		return nil
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List handles",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := remoteClient()
		if err != nil {
			return err
		}
		handles, err := c.Handles(cmd.Context())
		if err != nil {
			return err
		}
		if len(handles) == 0 {
			fmt.Println("No handles")
			return nil
		}
		fmt.Printf("%-20s %-12s %-10s %s\n", "HANDLE", "CONTAINER", "STATE", "AUTOSTART")
		for _, h := range handles {
			fmt.Printf("%-20s %-12s %-10s %t\n", h.ID, h.ContainerID, h.State, h.Autostart)
		}
		return nil
	},
}

var remoteContainersCmd = &cobra.Command{
	Use:   "containers",
	Short: "List the containers the daemon can run",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := remoteClient()
		if err != nil {
			return err
		}
		infos, err := c.Containers(cmd.Context())
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Printf("%-12s %v\n", info.ID, info.Types)
		}
		return nil
	},
}

var remoteLogCmd = &cobra.Command{
	Use:   "log [handle]",
	Short: "Print the server output of a handle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := remoteClient()
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		return followLog(ctx, c, args[0], os.Stdout, remoteFollow, time.Second)
	},
}

func init() {
	remoteCmd.PersistentFlags().StringVar(&remoteURL, "url", "", "daemon address (default: http://daemon.host:daemon.port)")
	remoteCmd.PersistentFlags().StringVar(&remoteToken, "token", os.Getenv("CARGO_TOKEN"), "daemon API token")

	remoteStartCmd.Flags().BoolVar(&remoteAutostart, "autostart", false, "restart the handle whenever it is found stopped")
	remoteStopCmd.Flags().BoolVar(&remoteDelete, "delete", false, "remove the handle and its files")
	remoteLogCmd.Flags().BoolVarP(&remoteFollow, "follow", "f", false, "keep printing new output")

	remoteCmd.AddCommand(remoteStartCmd)
	remoteCmd.AddCommand(remoteRestartCmd)
	remoteCmd.AddCommand(remoteStopCmd)
	remoteCmd.AddCommand(remoteListCmd)
	remoteCmd.AddCommand(remoteContainersCmd)
	remoteCmd.AddCommand(remoteLogCmd)
}

func remoteClient() (*client.Client, error) {
	url := remoteURL
	if url == "" {
		url = "http://" + cfg.Daemon.Address()
	}
	return client.New(url, client.WithToken(remoteToken))
}

// followLog copies the handle log to w, polling for more output until ctx
// is done when follow is set.
func followLog(ctx context.Context, c *client.Client, id string, w io.Writer, follow bool, every time.Duration) error {
	var offset int64
	for {
		data, next, err := c.Log(ctx, id, offset)
		if err != nil {
			if follow && ctx.Err() != nil {
				return nil
			}
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		offset = next
		if !follow {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(every):
		}
	}
}
