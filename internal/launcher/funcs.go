package launcher

import (
	"context"

	"github.com/codehaus-cargo/cargo-sub009/internal/container"
)

// Funcs adapts a pair of functions to container.Launcher. Embedded
// containers use it to run a server inside the current process.
type Funcs struct {
	OnStart func(ctx context.Context, c *container.Local) error
	OnStop  func(ctx context.Context, c *container.Local) error
}

// Start calls OnStart.
func (f Funcs) Start(ctx context.Context, c *container.Local) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx, c)
}

// Stop calls OnStop.
func (f Funcs) Stop(ctx context.Context, c *container.Local) error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop(ctx, c)
}

var (
	_ container.Launcher     = Funcs{}
	_ container.Launcher     = (*Process)(nil)
	_ container.ForceStopper = (*Process)(nil)
	_ container.Launcher     = (*Docker)(nil)
	_ container.ForceStopper = (*Docker)(nil)
)
