// Package generic provides the "generic" container: an installed server
// driven by configurable start and stop commands, an embedded static web
// server and a remote server reached through a manager endpoint.
package generic

import (
	"strings"

	"github.com/codehaus-cargo/cargo-sub009/internal/capability"
	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	"github.com/codehaus-cargo/cargo-sub009/internal/deployer"
	"github.com/codehaus-cargo/cargo-sub009/internal/factory"
	"github.com/codehaus-cargo/cargo-sub009/internal/launcher"
	"github.com/codehaus-cargo/cargo-sub009/internal/packager"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// ID is the container id.
const ID = "generic"

// Name is the human readable container name.
const Name = "Generic Server"

// Properties specific to the generic container. Commands are whitespace
// separated and may use @property@ tokens.
const (
	StartCommand = "cargo.generic.start.command"
	StopCommand  = "cargo.generic.stop.command"
)

// DeployDir is where deployables are copied, relative to the
// configuration home.
const DeployDir = "webapps"

// Provider registers the generic container.
func Provider() factory.Provider {
	return factory.NewProvider(ID, Register)
}

// Register adds every generic implementation to r.
func Register(r *factory.Registry) {
	r.Containers.Register(ID, models.Installed, newInstalled)
	r.Containers.Register(ID, models.Embedded, newEmbedded)
	r.Containers.Register(ID, models.Remote, func(cfg *configuration.Configuration) (container.Container, error) {
		return container.NewRemote(ID, Name, cfg, capability.ServletContainer())
	})

	r.ContainerCapabilities.Register(ID, func() capability.ContainerCapability {
		return capability.ServletContainer()
	})

	for _, ct := range []models.ContainerType{models.Installed, models.Embedded} {
		r.Configurations.RegisterLocal(ID, ct, models.Standalone, newStandalone)
		r.Configurations.RegisterLocal(ID, ct, models.Existing, newExisting)
		r.ConfigurationCapabilities.Register(ID, ct, models.Standalone, StandaloneCapability)
		r.ConfigurationCapabilities.Register(ID, ct, models.Existing, ExistingCapability)
	}
	r.Configurations.RegisterRuntime(ID, models.Remote, func(opts ...configuration.Option) (*configuration.Configuration, error) {
		return configuration.New(models.Runtime, "", opts...)
	})

	copying := func(c container.Container) (deployer.Deployer, error) {
		return deployer.NewCopying(c, DeployDir, r.Logger()), nil
	}
	r.Deployers.Register(ID, models.InstalledDeployer, copying)
	r.Deployers.Register(ID, models.EmbeddedDeployer, copying)
	r.Deployers.Register(ID, models.RemoteDeployer, func(c container.Container) (deployer.Deployer, error) {
		return deployer.NewRemote(c, r.Logger()), nil
	})

	r.Packagers.Register(ID, models.DirectoryPackager, func(target string) (packager.Packager, error) {
		return packager.NewDirectory(target, r.Logger(), "logs", "work"), nil
	})
}

// StandaloneCapability supports datasources, resources and the generic
// command properties on top of the standalone defaults.
func StandaloneCapability() capability.ConfigurationCapability {
	return capability.New(capability.StandaloneDefaults(), map[string]bool{
		property.RMIPort:                      true,
		property.DataSource:                   true,
		property.DataSourceConnectionType:     true,
		property.DataSourceTransactionSupport: true,
		property.Resource:                     true,
		property.IgnoreNonExistingProperties:  true,
		StartCommand:                          true,
		StopCommand:                           true,
	})
}

// ExistingCapability only adds the command properties.
func ExistingCapability() capability.ConfigurationCapability {
	return capability.New(capability.ExistingDefaults(), map[string]bool{
		StartCommand: true,
		StopCommand:  true,
	})
}

func newStandalone(home string, opts ...configuration.Option) (*configuration.Configuration, error) {
	opts = append([]configuration.Option{configuration.WithWriter(Writer{})}, opts...)
	return configuration.New(models.Standalone, home, opts...)
}

func newExisting(home string, opts ...configuration.Option) (*configuration.Configuration, error) {
	return configuration.New(models.Existing, home, opts...)
}

func newInstalled(cfg *configuration.Configuration) (container.Container, error) {
	c, err := container.NewLocal(ID, Name, models.Installed, cfg, &commandLauncher{})
	if err != nil {
		return nil, err
	}
	err = c.Apply(container.WithInstaller(deployer.NewCopying(c, DeployDir, c.Logger())))
	return c, err
}

func newEmbedded(cfg *configuration.Configuration) (container.Container, error) {
	srv := &embeddedServer{}
	c, err := container.NewLocal(ID, Name, models.Embedded, cfg, launcher.Funcs{OnStart: srv.start, OnStop: srv.stop})
	if err != nil {
		return nil, err
	}
	err = c.Apply(container.WithInstaller(deployer.NewCopying(c, DeployDir, c.Logger())))
	return c, err
}

func splitCommand(s string) []string {
	return strings.Fields(s)
}
