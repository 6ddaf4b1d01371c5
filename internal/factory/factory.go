package factory

import (
	"github.com/charmbracelet/log"

	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Registry groups the six factories. It is built once at startup, filled by
// providers and read only afterwards.
type Registry struct {
	Containers                *ContainerFactory
	ContainerCapabilities     *ContainerCapabilityFactory
	Configurations            *ConfigurationFactory
	ConfigurationCapabilities *ConfigurationCapabilityFactory
	Deployers                 *DeployerFactory
	Packagers                 *PackagerFactory

	logger     *log.Logger
	cfgOptions []configuration.Option
}

// Option customizes a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	logger     *log.Logger
	scratchDir string
	cfgOptions []configuration.Option
}

// WithLogger sets the logger used by the registry and handed to providers.
func WithLogger(l *log.Logger) Option {
	return func(o *registryOptions) { o.logger = l }
}

// WithScratchDir sets where standalone configurations without a home are
// created.
func WithScratchDir(dir string) Option {
	return func(o *registryOptions) { o.scratchDir = dir }
}

// WithConfigurationOptions adds options applied to every configuration the
// registry creates, typically the property override lookup.
func WithConfigurationOptions(opts ...configuration.Option) Option {
	return func(o *registryOptions) { o.cfgOptions = append(o.cfgOptions, opts...) }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	o := &registryOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return &Registry{
		Containers:                NewContainerFactory(),
		ContainerCapabilities:     NewContainerCapabilityFactory(),
		Configurations:            NewConfigurationFactory(o.scratchDir),
		ConfigurationCapabilities: NewConfigurationCapabilityFactory(),
		Deployers:                 NewDeployerFactory(),
		Packagers:                 NewPackagerFactory(),
		logger:                    o.logger,
		cfgOptions:                o.cfgOptions,
	}
}

// Logger returns the registry logger.
func (r *Registry) Logger() *log.Logger { return r.logger }

// CreateConfiguration creates a configuration with the registry wide
// options and, when registered, the matching configuration capability.
func (r *Registry) CreateConfiguration(id string, ct models.ContainerType, t models.ConfigurationType, home string) (*configuration.Configuration, error) {
	opts := append([]configuration.Option{configuration.WithLogger(r.logger)}, r.cfgOptions...)
	if r.ConfigurationCapabilities.IsRegistered(id, ct, t) {
		cc, err := r.ConfigurationCapabilities.Create(id, ct, t)
		if err != nil {
			return nil, err
		}
		opts = append(opts, configuration.WithCapability(cc))
	}
	return r.Configurations.Create(id, ct, t, home, opts...)
}

// CreateContainer creates the container (id, ct) with a new configuration
// of type t.
func (r *Registry) CreateContainer(id string, ct models.ContainerType, t models.ConfigurationType, home string) (container.Container, error) {
	cfg, err := r.CreateConfiguration(id, ct, t, home)
	if err != nil {
		return nil, err
	}
	return r.Containers.Create(id, ct, cfg)
}
