// Package container drives the lifecycle of application server instances.
package container

import (
	"context"

	"github.com/codehaus-cargo/cargo-sub009/internal/capability"
	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Container is any application server instance, local or remote.
type Container interface {
	ID() string
	Name() string
	Type() models.ContainerType
	State() models.State
	Capability() capability.ContainerCapability
	Configuration() *configuration.Configuration
}

// Controllable is a container whose process this library starts and stops.
type Controllable interface {
	Container
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
}

// Launcher starts and stops the server process behind a Local container.
// Start returns once the process was launched; readiness is checked by
// the container.
type Launcher interface {
	Start(ctx context.Context, c *Local) error
	Stop(ctx context.Context, c *Local) error
}

// ForceStopper is implemented by launchers that can kill a server that
// ignored the regular stop.
type ForceStopper interface {
	ForceStop(ctx context.Context, c *Local) error
}

var (
	_ Controllable = (*Local)(nil)
	_ Container    = (*Remote)(nil)
)
