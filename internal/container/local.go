package container

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/codehaus-cargo/cargo-sub009/internal/capability"
	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/monitor"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// DefaultPostStopDelay is the pause after a stop, since many servers keep
// running for a while after closing their sockets.
const DefaultPostStopDelay = 5 * time.Second

// Local is an installed or embedded container driven by a Launcher.
type Local struct {
	id         string
	name       string
	kind       models.ContainerType
	cfg        *configuration.Configuration
	launcher   Launcher
	capability capability.ContainerCapability
	installer  configuration.Installer
	logger     *log.Logger

	home          string
	output        string
	appendOutput  bool
	timeout       time.Duration
	pingPath      string
	pingURL       string
	pingContains  string
	postStopDelay time.Duration
	portInUse     func(ctx context.Context, host string, port int) bool

	mu    sync.Mutex
	state models.State
}

// LocalOption customizes a Local container.
type LocalOption func(*Local)

// WithHome sets the container installation directory.
func WithHome(home string) LocalOption {
	return func(c *Local) { c.home = home }
}

// WithTimeout sets how long start and stop wait for the server. Zero
// disables waiting.
func WithTimeout(d time.Duration) LocalOption {
	return func(c *Local) { c.timeout = d }
}

// WithOutput sends server output to path.
func WithOutput(path string, appendOutput bool) LocalOption {
	return func(c *Local) {
		c.output = path
		c.appendOutput = appendOutput
	}
}

// WithPing sets the path probed for readiness and an optional body check.
func WithPing(path, contains string) LocalOption {
	return func(c *Local) {
		c.pingPath = path
		c.pingContains = contains
	}
}

// WithPingURL probes url instead of the servlet port.
func WithPingURL(url string) LocalOption {
	return func(c *Local) { c.pingURL = url }
}

// WithPostStopDelay overrides DefaultPostStopDelay.
func WithPostStopDelay(d time.Duration) LocalOption {
	return func(c *Local) { c.postStopDelay = d }
}

// WithCapability sets the deployable types the container accepts.
func WithCapability(cc capability.ContainerCapability) LocalOption {
	return func(c *Local) { c.capability = cc }
}

// WithInstaller sets how static deployables are installed during configure.
func WithInstaller(i configuration.Installer) LocalOption {
	return func(c *Local) { c.installer = i }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) LocalOption {
	return func(c *Local) { c.logger = l }
}

// WithPortCheck replaces the probe used to detect ports already in use.
func WithPortCheck(f func(ctx context.Context, host string, port int) bool) LocalOption {
	return func(c *Local) { c.portInUse = f }
}

// NewLocal creates a local container. The configuration must be a
// standalone or existing one.
func NewLocal(id, name string, kind models.ContainerType, cfg *configuration.Configuration, launcher Launcher, opts ...LocalOption) (*Local, error) {
	if !kind.IsLocal() {
		return nil, errUtils.Usagef("container type [%s] is not a local container type", kind)
	}
	if cfg == nil || !cfg.Type().IsLocal() {
		return nil, errUtils.Usagef("container [%s] requires a local configuration", id)
	}
	if launcher == nil {
		return nil, errUtils.Usagef("container [%s] has no launcher", id)
	}

	c := &Local{
		id:            id,
		name:          name,
		kind:          kind,
		cfg:           cfg,
		launcher:      launcher,
		capability:    capability.ServletContainer(),
		logger:        log.Default(),
		timeout:       monitor.DefaultTimeout,
		pingPath:      "/",
		postStopDelay: DefaultPostStopDelay,
		portInUse:     monitor.InUse,
		state:         models.StateUnknown,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.name == "" {
		c.name = id
	}
	c.logger = c.logger.With("container", c.id)
	return c, nil
}

// Apply changes options of a container that is not running.
func (c *Local) Apply(opts ...LocalOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == models.StateStarting || c.state == models.StateStarted || c.state == models.StateStopping {
		return errUtils.Newf(errUtils.ErrLifecycle, "cannot change the %s container while it is %s", c.name, c.state)
	}
	for _, opt := range opts {
		opt(c)
	}
	return nil
}

// ID returns the container id.
func (c *Local) ID() string { return c.id }

// Name returns the human readable container name.
func (c *Local) Name() string { return c.name }

// Type returns installed or embedded.
func (c *Local) Type() models.ContainerType { return c.kind }

// Capability returns the deployable types the container accepts.
func (c *Local) Capability() capability.ContainerCapability { return c.capability }

// Configuration returns the container configuration.
func (c *Local) Configuration() *configuration.Configuration { return c.cfg }

// Home returns the container installation directory.
func (c *Local) Home() string { return c.home }

// Output returns the file server output goes to, if any.
func (c *Local) Output() string { return c.output }

// AppendOutput reports whether output is appended to an existing file.
func (c *Local) AppendOutput() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appendOutput
}

// Timeout returns the readiness timeout.
func (c *Local) Timeout() time.Duration { return c.timeout }

// Logger returns the container logger.
func (c *Local) Logger() *log.Logger { return c.logger }

// State returns the current lifecycle state.
func (c *Local) State() models.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Local) setState(s models.State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.logger.Debug("state changed", "state", s)
}

// InstallDeployable installs a static deployable into the configuration.
// Without an installer the deployable is left for the server to pick up.
func (c *Local) InstallDeployable(ctx context.Context, d *models.Deployable) error {
	if c.installer == nil {
		c.logger.Warn("no installer, skipping deployable", "deployable", d.Name())
		return nil
	}
	return c.installer.InstallDeployable(ctx, d)
}

// Start configures the container, launches it and waits until it serves
// requests. Any failure leaves the container in the unknown state.
func (c *Local) Start(ctx context.Context) (err error) {
	c.mu.Lock()
	if c.state == models.StateStarting || c.state == models.StateStarted {
		state := c.state
		c.mu.Unlock()
		return errUtils.Build(errUtils.Newf(errUtils.ErrLifecycle, "the container is already %s", state)).
			WithHint("use restart to restart a running container").
			Err()
	}
	c.state = models.StateStarting
	c.mu.Unlock()

	c.logger.Info("starting", "name", c.name)

	c.cfg.ApplyPortOffset()
	defer c.cfg.RevertPortOffset()

	defer func() {
		if err != nil {
			c.setState(models.StateUnknown)
			c.logger.Warn("start failed", "error", err)
			err = c.wrap("start", err)
		}
	}()

	if err := c.cfg.Configure(ctx, c); err != nil {
		return err
	}
	if err := c.checkPorts(ctx); err != nil {
		return err
	}
	if err := c.launcher.Start(ctx, c); err != nil {
		return err
	}
	if c.timeout != 0 {
		if err := monitor.NewWatchdog(c.pingMonitor(), c.timeout, c.logger).WaitForAvailable(ctx); err != nil {
			return err
		}
	}

	c.setState(models.StateStarted)
	c.logger.Info("started", "name", c.name, "port", c.cfg.PropertyValue(property.ServletPort))
	return nil
}

// Stop shuts the container down and waits until its ports are closed.
func (c *Local) Stop(ctx context.Context) (err error) {
	c.setState(models.StateStopping)
	c.logger.Info("stopping", "name", c.name)

	c.mu.Lock()
	appendOutput := c.appendOutput
	c.appendOutput = true
	c.mu.Unlock()

	c.cfg.ApplyPortOffset()
	defer func() {
		c.cfg.RevertPortOffset()
		c.mu.Lock()
		c.appendOutput = appendOutput
		c.mu.Unlock()
	}()

	defer func() {
		if err != nil {
			c.setState(models.StateUnknown)
			err = c.wrap("stop", err)
		}
	}()

	if err := c.launcher.Stop(ctx, c); err != nil {
		return err
	}
	if c.timeout != 0 {
		if err := c.waitForShutdown(ctx); err != nil {
			return err
		}
	}
	if fs, ok := c.launcher.(ForceStopper); ok {
		if err := fs.ForceStop(ctx, c); err != nil {
			return err
		}
	}

	c.setState(models.StateStopped)
	c.logger.Info("stopped", "name", c.name)
	return nil
}

// Restart stops then starts the container. A failed stop is logged and
// ignored.
func (c *Local) Restart(ctx context.Context) error {
	if err := c.Stop(ctx); err != nil {
		c.logger.Info("the stop phase of the restart failed", "error", err)
	}
	return c.Start(ctx)
}

// PingURL returns the URL probed for readiness.
func (c *Local) PingURL() string {
	if c.pingURL != "" {
		return c.pingURL
	}
	path := c.pingPath
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s:%s%s",
		c.cfg.PropertyValue(property.Protocol),
		c.cfg.PropertyValue(property.Hostname),
		c.cfg.PropertyValue(property.ServletPort),
		path)
}

func (c *Local) pingMonitor() monitor.Checker {
	var opts []monitor.Option
	if c.pingContains != "" {
		opts = append(opts, monitor.WithContains(c.pingContains))
	}
	return monitor.NewURLMonitor(c.PingURL(), opts...)
}

// ports returns the effective value of every valid port property.
func (c *Local) ports() map[string]int {
	out := make(map[string]int)
	for name, raw := range c.cfg.PortProperties() {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			continue
		}
		out[name] = port
	}
	return out
}

func (c *Local) checkPorts(ctx context.Context) error {
	host := c.cfg.PropertyValue(property.Hostname)
	ports := c.ports()

	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if c.portInUse(ctx, host, ports[name]) {
			return errUtils.Build(errUtils.Newf(errUtils.ErrPortInUse,
				"port number %d (defined with the property %s) is in use", ports[name], name)).
				WithHint("free the port on the system or set it to a different port in the container configuration").
				Err()
		}
	}
	return nil
}

func (c *Local) waitForShutdown(ctx context.Context) error {
	if err := monitor.NewWatchdog(c.pingMonitor(), c.timeout, c.logger).WaitForUnavailable(ctx); err != nil {
		return err
	}

	host := c.cfg.PropertyValue(property.Hostname)
	for name, port := range c.ports() {
		pm := monitor.NewPortMonitor(host, port, 250*time.Millisecond)
		if err := monitor.NewWatchdog(pm, c.timeout, c.logger).WaitForUnavailable(ctx); err != nil {
			return err
		}
		c.logger.Debug("port is shut down", "property", name, "port", port)
	}

	if c.postStopDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.postStopDelay):
		return nil
	}
}

// errWrapped marks errors that already carry a container name and log
// hint, so nested containers do not wrap twice.
var errWrapped = errors.New("container error")

func (c *Local) wrap(action string, err error) error {
	if errUtils.Is(err, errWrapped) {
		return err
	}
	b := errUtils.Build(errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to %s the %s container", action, c.name)).
		Mark(errWrapped)
	if c.output != "" {
		b = b.WithHintf("check the [%s] file containing the container logs for more details", c.output)
	}
	return b.Err()
}
