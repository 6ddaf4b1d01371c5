// Package daemon runs containers on behalf of remote clients. Each
// container lives under a handle id chosen by the client; the handle keeps
// the descriptor it was started with so the daemon can restart it, and
// handles flagged autostart are brought back when found stopped.
package daemon

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	"github.com/codehaus-cargo/cargo-sub009/internal/config"
	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	"github.com/codehaus-cargo/cargo-sub009/internal/descriptor"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/factory"
	"github.com/codehaus-cargo/cargo-sub009/internal/validation"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// DefaultLogFile is the container output file when a descriptor names none.
const DefaultLogFile = "cargo.log"

// StopStartDelay is the pause between stopping a handle's previous
// container and starting its replacement.
const StopStartDelay = 500 * time.Millisecond

// StartRequest starts a container under a handle.
type StartRequest struct {
	// Descriptor is the YAML or JSON run descriptor.
	Descriptor string `json:"descriptor" validate:"required"`

	// Autostart restarts the container whenever the daemon finds it stopped.
	Autostart bool `json:"autostart"`
}

// Daemon owns the handles and the containers behind them. Container
// operations are serialized.
type Daemon struct {
	mu sync.Mutex

	registry       *factory.Registry
	defaults       config.ContainerConfig
	workspace      string
	db             *HandleDB
	lock           *flock.Flock
	validator      *validation.Validator
	logger         *log.Logger
	stopStartDelay time.Duration
}

// New opens the daemon workspace. Only one daemon may use a workspace at
// a time.
func New(registry *factory.Registry, workspace string, defaults config.ContainerConfig, logger *log.Logger) (*Daemon, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, errUtils.Wrapf(err, errUtils.ErrConfiguration, "cannot create daemon workspace %s", workspace)
	}

	lock := flock.New(filepath.Join(workspace, ".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, errUtils.Wrapf(err, errUtils.ErrConfiguration, "cannot lock daemon workspace %s", workspace)
	}
	if !locked {
		return nil, errUtils.Build(errUtils.Usagef("daemon workspace %s is in use", workspace)).
			WithHint("another cargo daemon is running; set daemon.workspace to a different directory").
			Err()
	}

	db, err := OpenHandleDB(filepath.Join(workspace, HandleFile))
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	return &Daemon{
		registry:       registry,
		defaults:       defaults,
		workspace:      workspace,
		db:             db,
		lock:           lock,
		validator:      validation.New(validation.WithRegistry(registry)),
		logger:         logger.With("component", "daemon"),
		stopStartDelay: StopStartDelay,
	}, nil
}

// Registry returns the factory registry containers are created from.
func (d *Daemon) Registry() *factory.Registry { return d.registry }

// Handles returns the status of every handle sorted by id.
func (d *Daemon) Handles() []Status {
	handles := d.db.List()
	out := make([]Status, 0, len(handles))
	for _, h := range handles {
		out = append(out, h.status())
	}
	return out
}

// Handle returns the status of one handle.
func (d *Daemon) Handle(id string) (Status, error) {
	h := d.db.Get(id)
	if h == nil {
		return Status{}, notFound(id)
	}
	return h.status(), nil
}

// Start starts the descriptor under id, replacing whatever ran there
// before, and records the handle.
func (d *Daemon) Start(ctx context.Context, id string, req StartRequest) error {
	if err := ValidateHandleID(id); err != nil {
		return err
	}

	desc, err := d.parse(req.Descriptor)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.startLocked(ctx, id, desc, req.Descriptor, &req.Autostart)
}

// Restart starts the handle again from its recorded descriptor.
func (d *Daemon) Restart(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := d.db.Get(id)
	if h == nil {
		return notFound(id)
	}
	desc, err := d.parse(h.Descriptor)
	if err != nil {
		return err
	}
	return d.startLocked(ctx, id, desc, h.Descriptor, nil)
}

// Stop stops the handle's container and keeps autostart from bringing it
// back. With remove the handle is deleted as well.
func (d *Daemon) Stop(ctx context.Context, id string, remove bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := d.db.Get(id)
	if h == nil {
		return notFound(id)
	}

	var stopErr error
	if h.container != nil {
		stopErr = h.container.Stop(ctx)
	}

	next := *h
	next.ForceStop = true
	d.db.Put(&next)

	if remove {
		d.db.Remove(id)
		if err := d.db.Save(); err != nil {
			return err
		}
		if err := os.RemoveAll(d.handleDir(id)); err != nil {
			return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to remove files of handle %s", id)
		}
		d.logger.Info("handle deleted", "handle", id)
	}
	return stopErr
}

// handleDir holds the logs and default configuration home of a handle.
func (d *Daemon) handleDir(id string) string {
	return filepath.Join(d.workspace, "handles", id)
}

// Log returns the container output of a handle starting at offset, and the
// offset to continue from.
func (d *Daemon) Log(id string, offset int64) ([]byte, int64, error) {
	h := d.db.Get(id)
	if h == nil {
		return nil, 0, notFound(id)
	}
	if h.LogPath == "" {
		return nil, 0, nil
	}

	f, err := os.Open(h.LogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, 0, err
	}
	return data, offset + int64(len(data)), nil
}

// Autostart starts every autostart handle found stopped that was not
// stopped on purpose. Failures are logged.
func (d *Daemon) Autostart(ctx context.Context) {
	for _, h := range d.db.List() {
		if !h.Autostart || h.ForceStop || h.State() != models.StateStopped {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		d.mu.Lock()
		current := d.db.Get(h.ID)
		if current != nil && current.Autostart && !current.ForceStop && current.State() == models.StateStopped {
			d.logger.Info("autostarting", "handle", h.ID)
			desc, err := d.parse(current.Descriptor)
			if err == nil {
				err = d.startLocked(ctx, current.ID, desc, current.Descriptor, nil)
			}
			if err != nil {
				d.logger.Warn("autostart failed", "handle", h.ID, "error", err)
			}
		}
		d.mu.Unlock()
	}
}

// Run calls Autostart every interval until ctx is done. The first pass
// runs right away so handles survive a daemon restart.
func (d *Daemon) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.Autostart(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Autostart(ctx)
		}
	}
}

// Close stops every running container and releases the workspace.
func (d *Daemon) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, h := range d.db.List() {
		if h.container == nil || h.State() == models.StateStopped {
			continue
		}
		if err := h.container.Stop(ctx); err != nil {
			d.logger.Warn("stop failed", "handle", h.ID, "error", err)
		}
	}
	return d.lock.Unlock()
}

func (d *Daemon) parse(raw string) (*descriptor.Descriptor, error) {
	result, err := d.validator.ValidateDescriptor([]byte(raw))
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			msgs = append(msgs, e.Field+": "+e.Message)
		}
		return nil, errUtils.Usagef("invalid descriptor: %s", strings.Join(msgs, "; "))
	}
	return descriptor.Parse([]byte(raw))
}

// startLocked does the work of Start. A nil autostart keeps the recorded
// setting. The caller holds d.mu.
func (d *Daemon) startLocked(ctx context.Context, id string, desc *descriptor.Descriptor, raw string, autostart *bool) error {
	previous := d.db.Get(id)
	if previous != nil && previous.container != nil {
		if err := previous.container.Stop(ctx); err != nil {
			d.logger.Warn("stopping previous container failed", "handle", id, "error", err)
		}
		select {
		case <-time.After(d.stopStartDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	handleDir := d.handleDir(id)
	logDir := filepath.Join(handleDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "cannot create %s", logDir)
	}

	cfgType, err := desc.ConfigurationType()
	if err != nil {
		return err
	}
	if desc.Configuration.Home == "" && cfgType != models.Runtime {
		desc.Configuration.Home = filepath.Join(handleDir, "configuration")
	}
	if desc.Container.Output == "" {
		desc.Container.Output = filepath.Join(logDir, DefaultLogFile)
		desc.Container.Append = false
	} else {
		desc.Container.Output = filepath.Join(logDir, filepath.Base(desc.Container.Output))
	}

	run, err := desc.Build(d.registry, d.defaults)
	if err != nil {
		return err
	}
	ctl, err := run.Controllable()
	if err != nil {
		return err
	}

	d.logger.Info("starting", "handle", id, "container", desc.Container.ID)
	if err := ctl.Start(ctx); err != nil {
		if stopErr := ctl.Stop(ctx); stopErr != nil {
			d.logger.Debug("cleanup stop failed", "handle", id, "error", stopErr)
		}
		return err
	}

	next := &Handle{ID: id, ContainerID: desc.Container.ID, container: ctl}
	if local, ok := ctl.(*container.Local); ok {
		next.LogPath = local.Output()
	}
	switch {
	case autostart != nil:
		next.Autostart = *autostart
		next.Descriptor = raw
	case previous != nil:
		next.Autostart = previous.Autostart
		next.Descriptor = previous.Descriptor
	default:
		next.Descriptor = raw
	}
	d.db.Put(next)

	if autostart != nil {
		return d.db.Save()
	}
	return nil
}

func notFound(id string) error {
	return errUtils.Newf(errUtils.ErrNotFound, "handle id %s not found", id)
}
