package container

import (
	"github.com/codehaus-cargo/cargo-sub009/internal/capability"
	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Remote is an already running server reached through a runtime
// configuration. Its lifecycle is not controlled here.
type Remote struct {
	id         string
	name       string
	cfg        *configuration.Configuration
	capability capability.ContainerCapability
}

// NewRemote creates a remote container.
func NewRemote(id, name string, cfg *configuration.Configuration, cc capability.ContainerCapability) (*Remote, error) {
	if cfg == nil || cfg.Type() != models.Runtime {
		return nil, errUtils.Usagef("remote container [%s] requires a runtime configuration", id)
	}
	if cc == nil {
		cc = capability.ServletContainer()
	}
	if name == "" {
		name = id
	}
	return &Remote{
		id:         id,
		name:       name,
		cfg:        cfg,
		capability: cc,
	}, nil
}

// ID returns the container id.
func (r *Remote) ID() string { return r.id }

// Name returns the container name.
func (r *Remote) Name() string { return r.name }

// Type always returns remote.
func (r *Remote) Type() models.ContainerType { return models.Remote }

// State is unknown; remote servers are not controlled.
func (r *Remote) State() models.State { return models.StateUnknown }

// Capability returns the deployable types the container accepts.
func (r *Remote) Capability() capability.ContainerCapability { return r.capability }

// Configuration returns the runtime configuration.
func (r *Remote) Configuration() *configuration.Configuration { return r.cfg }
