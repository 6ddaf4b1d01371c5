// Package docker provides the "docker" container: any server image run
// through the local Docker engine with its cargo ports published and the
// configuration home mounted.
package docker

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/codehaus-cargo/cargo-sub009/internal/capability"
	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	"github.com/codehaus-cargo/cargo-sub009/internal/containers/generic"
	"github.com/codehaus-cargo/cargo-sub009/internal/deployer"
	"github.com/codehaus-cargo/cargo-sub009/internal/factory"
	"github.com/codehaus-cargo/cargo-sub009/internal/launcher"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// ID is the container id.
const ID = "docker"

// Name is the human readable container name.
const Name = "Docker Container"

// Docker specific properties.
const (
	Image       = "cargo.docker.image"
	PullPolicy  = "cargo.docker.pull"
	Command     = "cargo.docker.command"
	Env         = "cargo.docker.env"
	ConfigMount = "cargo.docker.mount"
	StopTimeout = "cargo.docker.stop.timeout"
)

// Provider registers the docker container. A nil api connects to the
// engine described by the environment on first start.
func Provider(api launcher.DockerAPI) factory.Provider {
	return factory.NewProvider(ID, func(r *factory.Registry) { Register(r, api) })
}

// Register adds the docker implementations to r.
func Register(r *factory.Registry, api launcher.DockerAPI) {
	r.Containers.Register(ID, models.Installed, func(cfg *configuration.Configuration) (container.Container, error) {
		c, err := container.NewLocal(ID, Name, models.Installed, cfg, &engineLauncher{api: api})
		if err != nil {
			return nil, err
		}
		err = c.Apply(
			container.WithCapability(capability.J2EEContainer()),
			container.WithInstaller(deployer.NewCopying(c, generic.DeployDir, c.Logger())),
		)
		return c, err
	})
	r.ContainerCapabilities.Register(ID, func() capability.ContainerCapability {
		return capability.J2EEContainer()
	})
	r.Configurations.RegisterLocal(ID, models.Installed, models.Standalone, func(home string, opts ...configuration.Option) (*configuration.Configuration, error) {
		opts = append([]configuration.Option{configuration.WithWriter(generic.Writer{})}, opts...)
		return configuration.New(models.Standalone, home, opts...)
	})
	r.ConfigurationCapabilities.Register(ID, models.Installed, models.Standalone, Capability)
	r.Deployers.Register(ID, models.InstalledDeployer, func(c container.Container) (deployer.Deployer, error) {
		return deployer.NewCopying(c, generic.DeployDir, r.Logger()), nil
	})
}

// Capability is the generic standalone capability plus the docker
// properties.
func Capability() capability.ConfigurationCapability {
	return capability.New(generic.StandaloneCapability().SupportsMap(), map[string]bool{
		Image:       true,
		PullPolicy:  true,
		Command:     true,
		Env:         true,
		ConfigMount: true,
		StopTimeout: true,
	})
}

// engineLauncher reads the image settings when the container starts, since
// properties are usually set after the container is created.
type engineLauncher struct {
	api DockerAPI

	mu     sync.Mutex
	docker *launcher.Docker
}

// DockerAPI aliases the launcher interface for provider callers.
type DockerAPI = launcher.DockerAPI

func (l *engineLauncher) Start(ctx context.Context, c *container.Local) error {
	l.mu.Lock()
	if l.api == nil {
		engine, err := launcher.NewEngine()
		if err != nil {
			l.mu.Unlock()
			return err
		}
		l.api = engine
	}
	api := l.api
	l.mu.Unlock()

	d := launcher.NewDocker(api, Spec(c.Configuration()))
	if err := d.Start(ctx, c); err != nil {
		return err
	}

	l.mu.Lock()
	l.docker = d
	l.mu.Unlock()
	return nil
}

func (l *engineLauncher) current() *launcher.Docker {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.docker
}

func (l *engineLauncher) Stop(ctx context.Context, c *container.Local) error {
	if d := l.current(); d != nil {
		return d.Stop(ctx, c)
	}
	return nil
}

func (l *engineLauncher) ForceStop(ctx context.Context, c *container.Local) error {
	if d := l.current(); d != nil {
		return d.ForceStop(ctx, c)
	}
	return nil
}

// Spec reads the docker properties of cfg. Env is a pipe separated list of
// NAME=value pairs.
func Spec(cfg *configuration.Configuration) launcher.DockerSpec {
	spec := launcher.DockerSpec{
		Image:       cfg.PropertyValue(Image),
		PullPolicy:  cfg.PropertyValue(PullPolicy),
		Command:     strings.Fields(cfg.PropertyValue(Command)),
		ConfigMount: cfg.PropertyValue(ConfigMount),
	}
	if env := cfg.PropertyValue(Env); env != "" {
		for _, kv := range strings.Split(env, "|") {
			if kv = strings.TrimSpace(kv); kv != "" {
				spec.Env = append(spec.Env, kv)
			}
		}
	}
	if raw := cfg.PropertyValue(StopTimeout); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			spec.StopTimeout = n
		}
	}
	return spec
}
