package generic

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/launcher"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
)

// commandLauncher builds the process launcher from the configuration
// properties when the container starts.
type commandLauncher struct {
	mu   sync.Mutex
	proc *launcher.Process
}

func (l *commandLauncher) Start(ctx context.Context, c *container.Local) error {
	cfg := c.Configuration()
	start := splitCommand(cfg.PropertyValue(StartCommand))
	if len(start) == 0 {
		return errUtils.Usagef("the %s container needs the %s property", c.Name(), StartCommand)
	}

	var opts []launcher.ProcessOption
	if stop := splitCommand(cfg.PropertyValue(StopCommand)); len(stop) > 0 {
		opts = append(opts, launcher.WithStopCommand(stop...))
	}
	if args := cfg.PropertyValue(property.JVMArgs); args != "" {
		opts = append(opts, launcher.WithEnv("JAVA_OPTS="+args))
	}

	proc := launcher.NewProcess(start, opts...)
	if err := proc.Start(ctx, c); err != nil {
		return err
	}

	l.mu.Lock()
	l.proc = proc
	l.mu.Unlock()
	return nil
}

func (l *commandLauncher) current() *launcher.Process {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.proc
}

func (l *commandLauncher) Stop(ctx context.Context, c *container.Local) error {
	if p := l.current(); p != nil {
		return p.Stop(ctx, c)
	}
	if stop := splitCommand(c.Configuration().PropertyValue(StopCommand)); len(stop) > 0 {
		// Stopping a server started by another process.
		return launcher.NewProcess(nil, launcher.WithStopCommand(stop...)).Stop(ctx, c)
	}
	return nil
}

func (l *commandLauncher) ForceStop(ctx context.Context, c *container.Local) error {
	if p := l.current(); p != nil {
		return p.ForceStop(ctx, c)
	}
	return nil
}

// embeddedServer serves the deploy directory of the configuration home
// over HTTP inside the current process.
type embeddedServer struct {
	mu sync.Mutex
	e  *echo.Echo
}

func (s *embeddedServer) start(_ context.Context, c *container.Local) error {
	cfg := c.Configuration()
	root := filepath.Join(cfg.Home(), DeployDir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to create %s", root)
	}

	addr := net.JoinHostPort(cfg.PropertyValue(property.Hostname), cfg.PropertyValue(property.ServletPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to listen on %s", addr)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Listener = ln
	e.GET("/", func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, Name+" is running")
	})
	e.Static("/", root)

	s.mu.Lock()
	s.e = e
	s.mu.Unlock()

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			c.Logger().Error("embedded server failed", "error", err)
		}
	}()
	c.Logger().Info("embedded server listening", "address", addr, "root", root)
	return nil
}

func (s *embeddedServer) stop(ctx context.Context, c *container.Local) error {
	s.mu.Lock()
	e := s.e
	s.e = nil
	s.mu.Unlock()

	if e == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return errUtils.Wrapf(err, errUtils.ErrLifecycle, "failed to stop the embedded server")
	}
	c.Logger().Info("embedded server stopped")
	return nil
}
