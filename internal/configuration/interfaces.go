package configuration

import (
	"context"

	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Owner is the container a configuration is materialized for.
type Owner interface {
	ID() string
	Name() string
}

// Installer is implemented by owners that install static deployables into
// the configuration before the container is launched.
type Installer interface {
	InstallDeployable(ctx context.Context, d *models.Deployable) error
}

// Writer writes the vendor specific files of a configuration. Tokens holds
// the property values for template substitution.
type Writer interface {
	WriteFiles(ctx context.Context, c *Configuration, owner Owner, tokens Tokens) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(ctx context.Context, c *Configuration, owner Owner, tokens Tokens) error

// WriteFiles calls f.
func (f WriterFunc) WriteFiles(ctx context.Context, c *Configuration, owner Owner, tokens Tokens) error {
	return f(ctx, c, owner, tokens)
}

// Configurable is anything that can be materialized for a container.
type Configurable interface {
	Type() models.ConfigurationType
	Home() string
	Phase() Phase
	Configure(ctx context.Context, owner Owner) error
}

// PortOffsettable shifts port properties by the configured offset.
type PortOffsettable interface {
	ApplyPortOffset()
	RevertPortOffset()
}

// ResourceValidating checks registered resources and datasources against a capability.
type ResourceValidating interface {
	CollectUnsupportedResources() error
	CollectUnsupportedDataSources() error
}

// NamedOwner is a minimal Owner for configuring without a container.
type NamedOwner struct {
	OwnerID   string
	OwnerName string
}

// ID returns the owner id.
func (o NamedOwner) ID() string { return o.OwnerID }

// Name returns the owner name, falling back to the id.
func (o NamedOwner) Name() string {
	if o.OwnerName == "" {
		return o.OwnerID
	}
	return o.OwnerName
}

var (
	_ Configurable       = (*Configuration)(nil)
	_ PortOffsettable    = (*Configuration)(nil)
	_ ResourceValidating = (*Configuration)(nil)
)
