package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codehaus-cargo/cargo-sub009/models"
)

var runNoWait bool

var runCmd = &cobra.Command{
	Use:   "run [descriptor]",
	Short: "Start a container and stop it on interrupt",
	Long: `Configure and start the container a descriptor describes, wait until
it answers, then block until interrupted and stop it again.

Examples:
  cargo run tomcat.yaml
  cargo run tomcat.yaml -D cargo.servlet.port=9090
  cargo run tomcat.yaml --no-wait`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var stopCmd = &cobra.Command{
	Use:   "stop [descriptor]",
	Short: "Stop a container started with --no-wait",
	Args:  cobra.ExactArgs(1),
	RunE:  runStop,
}

var configureCmd = &cobra.Command{
	Use:   "configure [descriptor]",
	Short: "Create the container configuration without starting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigure,
}

var deployCmd = &cobra.Command{
	Use:   "deploy [descriptor]",
	Short: "Deploy the descriptor deployables to a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeployer(cmd, args[0], true)
	},
}

var undeployCmd = &cobra.Command{
	Use:   "undeploy [descriptor]",
	Short: "Remove the descriptor deployables from a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDeployer(cmd, args[0], false)
	},
}

var packageCmd = &cobra.Command{
	Use:   "package [descriptor] [target]",
	Short: "Package a configured container into a directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runPackage,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered containers",
	RunE:  runList,
}

func init() {
	runCmd.Flags().BoolVar(&runNoWait, "no-wait", false, "return once the container started")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
}

func runRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	c, err := run.Controllable()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	if err := c.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("✓ %s started\n", c.Name())
	if runNoWait {
		return nil
	}

	fmt.Println("Press Ctrl-C to stop the container")
	<-ctx.Done()
	fmt.Println("\n⚠️  Shutdown signal received")

	if err := c.Stop(context.Background()); err != nil {
		return err
	}
	fmt.Printf("✓ %s stopped\n", c.Name())
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	c, err := run.Controllable()
	if err != nil {
		return err
	}
	if err := c.Stop(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("✓ %s stopped\n", c.Name())
	return nil
}

func runConfigure(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if err := run.Configure(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("✓ Configuration created in %s\n", run.Container.Configuration().Home())
	return nil
}

func runDeployer(cmd *cobra.Command, path string, deploy bool) error {
	run, err := loadRun(path)
	if err != nil {
		return err
	}
	if deploy {
		err = run.Deploy(cmd.Context())
	} else {
		err = run.Undeploy(cmd.Context())
	}
	if err != nil {
		return err
	}
	action := "undeployed"
	if deploy {
		action = "deployed"
	}
	for _, d := range run.Deployables {
		fmt.Printf("✓ %s %s\n", d.Name(), action)
	}
	return nil
}

func runPackage(cmd *cobra.Command, args []string) error {
	run, r, err := loadRunWithRegistry(args[0])
	if err != nil {
		return err
	}
	p, err := r.Packagers.Create(run.Container.ID(), models.DirectoryPackager, args[1])
	if err != nil {
		return err
	}
	if err := run.Configure(cmd.Context()); err != nil {
		return err
	}
	if err := p.Package(cmd.Context(), run.Container); err != nil {
		return err
	}
	fmt.Printf("✓ Packaged %s into %s\n", run.Container.Name(), args[1])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	r, err := newRegistry()
	if err != nil {
		return err
	}
	ids := r.Containers.ContainerIDs()
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("%-12s", id)
		for _, t := range r.Containers.Types(id) {
			fmt.Printf(" %s", t)
		}
		fmt.Println()
	}
	return nil
}
