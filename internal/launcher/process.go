package launcher

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
)

// Tokens available in process arguments besides the configuration properties.
const (
	TokenConfigurationHome = "cargo.configuration.home"
	TokenContainerHome     = "cargo.container.home"
)

// DefaultStopGrace is how long a process may take to exit after an interrupt.
const DefaultStopGrace = 10 * time.Second

// Process runs the server as a child process. Arguments may contain
// @property@ tokens. Without a stop command, Stop interrupts the process.
type Process struct {
	startCmd []string
	stopCmd  []string
	env      []string
	grace    time.Duration

	mu      sync.Mutex
	running *child
}

type child struct {
	cmd  *exec.Cmd
	out  io.Closer
	done chan struct{}
	err  error
}

// ProcessOption customizes a Process.
type ProcessOption func(*Process)

// WithStopCommand runs args to stop the server instead of interrupting it.
func WithStopCommand(args ...string) ProcessOption {
	return func(p *Process) { p.stopCmd = args }
}

// WithEnv adds NAME=value pairs to the process environment.
func WithEnv(env ...string) ProcessOption {
	return func(p *Process) { p.env = append(p.env, env...) }
}

// WithStopGrace overrides DefaultStopGrace.
func WithStopGrace(d time.Duration) ProcessOption {
	return func(p *Process) { p.grace = d }
}

// NewProcess creates a process launcher for the start command args.
func NewProcess(args []string, opts ...ProcessOption) *Process {
	p := &Process{startCmd: args, grace: DefaultStopGrace}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start forks the start command.
func (p *Process) Start(ctx context.Context, c *container.Local) error {
	if len(p.startCmd) == 0 {
		return errUtils.Usagef("container [%s] has no start command", c.ID())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running != nil && !p.running.exited() {
		return errUtils.Newf(errUtils.ErrLifecycle, "process %d is still running", p.running.cmd.Process.Pid)
	}

	cmd, out, err := p.command(c, p.startCmd)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		_ = out.Close()
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to start process %s", cmd.Path)
	}

	ch := &child{cmd: cmd, out: out, done: make(chan struct{})}
	p.running = ch
	go ch.watch(c.Logger())

	c.Logger().Info("process started", "pid", cmd.Process.Pid, "command", cmd.Path)
	return nil
}

// Stop runs the stop command, or interrupts the process, then waits up to
// the grace period for the process to exit.
func (p *Process) Stop(ctx context.Context, c *container.Local) error {
	p.mu.Lock()
	ch := p.running
	p.mu.Unlock()

	if len(p.stopCmd) > 0 {
		cmd, out, err := p.command(c, p.stopCmd)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := cmd.Run(); err != nil {
			return errUtils.Wrapf(err, errUtils.ErrLifecycle, "stop command %s failed", cmd.Path)
		}
	} else if ch != nil && !ch.exited() {
		if err := ch.cmd.Process.Signal(os.Interrupt); err != nil {
			c.Logger().Warn("interrupt failed, killing process", "pid", ch.cmd.Process.Pid, "error", err)
			_ = ch.cmd.Process.Kill()
		}
	}

	if ch == nil {
		return nil
	}
	select {
	case <-ch.done:
	case <-time.After(p.grace):
		c.Logger().Warn("process did not exit in time", "pid", ch.cmd.Process.Pid, "grace", p.grace)
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// ForceStop kills the process if it is still alive.
func (p *Process) ForceStop(_ context.Context, c *container.Local) error {
	p.mu.Lock()
	ch := p.running
	p.mu.Unlock()

	if ch == nil || ch.exited() {
		return nil
	}
	c.Logger().Warn("killing process", "pid", ch.cmd.Process.Pid)
	if err := ch.cmd.Process.Kill(); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to kill process %d", ch.cmd.Process.Pid)
	}
	<-ch.done
	return nil
}

// Pid returns the pid of the running process, or 0.
func (p *Process) Pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running == nil || p.running.exited() {
		return 0
	}
	return p.running.cmd.Process.Pid
}

// command builds an exec.Cmd with tokens expanded and output redirected.
func (p *Process) command(c *container.Local, args []string) (*exec.Cmd, io.WriteCloser, error) {
	cfg := c.Configuration()
	values := cfg.EffectiveProperties()
	values[TokenConfigurationHome] = cfg.Home()
	values[TokenContainerHome] = c.Home()
	tokens := configuration.NewTokens(values)

	expanded := make([]string, len(args))
	for i, a := range args {
		expanded[i] = tokens.Replace(a)
	}

	cmd := exec.Command(expanded[0], expanded[1:]...)
	cmd.Dir = c.Home()
	if cmd.Dir == "" {
		cmd.Dir = cfg.Home()
	}
	cmd.Env = append(os.Environ(), p.env...)
	if javaHome := cfg.PropertyValue(property.JavaHome); javaHome != "" {
		cmd.Env = append(cmd.Env, "JAVA_HOME="+javaHome)
	}

	out, err := openOutput(c)
	if err != nil {
		return nil, nil, err
	}
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd, out, nil
}

// openOutput opens the container output file, or forwards output to the
// container logger when none is set.
func openOutput(c *container.Local) (io.WriteCloser, error) {
	if c.Output() == "" {
		w := c.Logger().StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel}).Writer()
		return nopCloser{w}, nil
	}

	if err := os.MkdirAll(filepath.Dir(c.Output()), 0o755); err != nil {
		return nil, errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to create output directory")
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if c.AppendOutput() {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(c.Output(), flags, 0o644)
	if err != nil {
		return nil, errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to open output file %s", c.Output())
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (ch *child) watch(logger *log.Logger) {
	ch.err = ch.cmd.Wait()
	_ = ch.out.Close()
	close(ch.done)

	if ch.err != nil {
		logger.Info("process exited", "pid", ch.cmd.Process.Pid, "error", ch.err)
		return
	}
	logger.Info("process exited", "pid", ch.cmd.Process.Pid)
}

func (ch *child) exited() bool {
	select {
	case <-ch.done:
		return true
	default:
		return false
	}
}
