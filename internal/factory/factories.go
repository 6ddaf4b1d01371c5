package factory

import (
	"os"
	"path/filepath"

	"github.com/codehaus-cargo/cargo-sub009/internal/capability"
	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	"github.com/codehaus-cargo/cargo-sub009/internal/deployer"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/packager"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// ContainerConstructor builds a container around its configuration.
type ContainerConstructor func(cfg *configuration.Configuration) (container.Container, error)

// ContainerFactory creates containers by id and container type.
type ContainerFactory struct {
	reg *hintRegistry[ContainerConstructor]
}

// NewContainerFactory creates an empty factory.
func NewContainerFactory() *ContainerFactory {
	return &ContainerFactory{reg: newHintRegistry[ContainerConstructor]("container")}
}

// Register maps (id, type) to ctor.
func (f *ContainerFactory) Register(id string, t models.ContainerType, ctor ContainerConstructor) {
	f.reg.register(id, string(t), ctor)
}

// IsRegistered reports whether (id, type) has a constructor.
func (f *ContainerFactory) IsRegistered(id string, t models.ContainerType) bool {
	return f.reg.isRegistered(id, string(t))
}

// Create builds the container. Local container types need a local
// configuration and remote containers a runtime one.
func (f *ContainerFactory) Create(id string, t models.ContainerType, cfg *configuration.Configuration) (container.Container, error) {
	ctor, err := f.reg.lookup(RegistrationKey{Identity: FullIdentity(id, t), Hint: string(t)})
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errUtils.Usagef("a configuration is required to create %s", FullIdentity(id, t))
	}
	if t.IsLocal() != cfg.Type().IsLocal() {
		return nil, errUtils.Usagef("a %s container cannot use a %s configuration", t, cfg.Type())
	}
	return ctor(cfg)
}

// ContainerIDs returns every registered container id.
func (f *ContainerFactory) ContainerIDs() []string { return f.reg.ids() }

// Types returns the container types registered for id.
func (f *ContainerFactory) Types(id string) []models.ContainerType {
	hints := f.reg.hints(id)
	out := make([]models.ContainerType, len(hints))
	for i, h := range hints {
		out[i] = models.ContainerType(h)
	}
	return out
}

// ContainerCapabilityFactory maps a container id to the deployable types it
// accepts.
type ContainerCapabilityFactory struct {
	reg *hintRegistry[func() capability.ContainerCapability]
}

// NewContainerCapabilityFactory creates an empty factory.
func NewContainerCapabilityFactory() *ContainerCapabilityFactory {
	return &ContainerCapabilityFactory{reg: newHintRegistry[func() capability.ContainerCapability]("container capability")}
}

// Register maps id to ctor.
func (f *ContainerCapabilityFactory) Register(id string, ctor func() capability.ContainerCapability) {
	f.reg.register(id, "", ctor)
}

// IsRegistered reports whether id has a capability.
func (f *ContainerCapabilityFactory) IsRegistered(id string) bool {
	return f.reg.isRegistered(id, "")
}

// Create returns the capability of id.
func (f *ContainerCapabilityFactory) Create(id string) (capability.ContainerCapability, error) {
	ctor, err := f.reg.lookup(RegistrationKey{Identity: SimpleIdentity(id)})
	if err != nil {
		return nil, err
	}
	return ctor(), nil
}

// LocalConfigurationConstructor builds a standalone or existing configuration.
type LocalConfigurationConstructor func(home string, opts ...configuration.Option) (*configuration.Configuration, error)

// RuntimeConfigurationConstructor builds a runtime configuration.
type RuntimeConfigurationConstructor func(opts ...configuration.Option) (*configuration.Configuration, error)

type configurationConstructor struct {
	local   LocalConfigurationConstructor
	runtime RuntimeConfigurationConstructor
}

// ConfigurationFactory creates configurations by container id, container
// type and configuration type.
type ConfigurationFactory struct {
	reg        *hintRegistry[configurationConstructor]
	scratchDir string
}

// NewConfigurationFactory creates an empty factory. Standalone
// configurations requested without a home get one under scratchDir, or
// under the system temp directory when scratchDir is empty.
func NewConfigurationFactory(scratchDir string) *ConfigurationFactory {
	return &ConfigurationFactory{
		reg:        newHintRegistry[configurationConstructor]("configuration"),
		scratchDir: scratchDir,
	}
}

func configurationHint(ct models.ContainerType, t models.ConfigurationType) string {
	return string(ct) + "/" + string(t)
}

// RegisterLocal maps a standalone or existing configuration to ctor.
func (f *ConfigurationFactory) RegisterLocal(id string, ct models.ContainerType, t models.ConfigurationType, ctor LocalConfigurationConstructor) {
	f.reg.register(id, configurationHint(ct, t), configurationConstructor{local: ctor})
}

// RegisterRuntime maps the runtime configuration of (id, ct) to ctor.
func (f *ConfigurationFactory) RegisterRuntime(id string, ct models.ContainerType, ctor RuntimeConfigurationConstructor) {
	f.reg.register(id, configurationHint(ct, models.Runtime), configurationConstructor{runtime: ctor})
}

// IsRegistered reports whether the configuration has a constructor.
func (f *ConfigurationFactory) IsRegistered(id string, ct models.ContainerType, t models.ConfigurationType) bool {
	return f.reg.isRegistered(id, configurationHint(ct, t))
}

// Create builds a configuration. Runtime configurations take no home,
// existing configurations require one and standalone configurations get a
// fresh scratch directory when home is empty.
func (f *ConfigurationFactory) Create(id string, ct models.ContainerType, t models.ConfigurationType, home string, opts ...configuration.Option) (*configuration.Configuration, error) {
	key := RegistrationKey{Identity: FullIdentity(id, ct), Hint: configurationHint(ct, t)}

	switch t {
	case models.Runtime:
		if home != "" {
			return nil, errUtils.Usagef("a runtime configuration has no home directory, got [%s]", home)
		}
		ctor, err := f.reg.lookup(key)
		if err != nil {
			return nil, err
		}
		if ctor.runtime == nil {
			return nil, errUtils.Usagef("%s has no runtime configuration constructor", key)
		}
		return ctor.runtime(opts...)

	case models.Standalone, models.Existing:
		ctor, err := f.reg.lookup(key)
		if err != nil {
			return nil, err
		}
		if ctor.local == nil {
			return nil, errUtils.Usagef("%s has no %s configuration constructor", key, t)
		}
		if home == "" {
			if t == models.Existing {
				return nil, errUtils.Usagef("an existing configuration requires the home directory of the existing install")
			}
			if home, err = f.scratchHome(id); err != nil {
				return nil, err
			}
		}
		return ctor.local(home, opts...)

	default:
		return nil, errUtils.Usagef("unknown configuration type [%s]; valid types are %v", t, models.ConfigurationTypes)
	}
}

func (f *ConfigurationFactory) scratchHome(id string) (string, error) {
	base := f.scratchDir
	if base == "" {
		base = os.TempDir()
	}
	parent := filepath.Join(base, "cargo", "conf")
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to create scratch directory %s", parent)
	}
	home, err := os.MkdirTemp(parent, id+"-")
	if err != nil {
		return "", errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to allocate a configuration home in %s", parent)
	}
	return home, nil
}

// ConfigurationCapabilityFactory maps a configuration to the properties it
// honors.
type ConfigurationCapabilityFactory struct {
	reg *hintRegistry[func() capability.ConfigurationCapability]
}

// NewConfigurationCapabilityFactory creates an empty factory.
func NewConfigurationCapabilityFactory() *ConfigurationCapabilityFactory {
	return &ConfigurationCapabilityFactory{reg: newHintRegistry[func() capability.ConfigurationCapability]("configuration capability")}
}

// Register maps (id, ct, t) to ctor.
func (f *ConfigurationCapabilityFactory) Register(id string, ct models.ContainerType, t models.ConfigurationType, ctor func() capability.ConfigurationCapability) {
	f.reg.register(id, configurationHint(ct, t), ctor)
}

// IsRegistered reports whether (id, ct, t) has a capability.
func (f *ConfigurationCapabilityFactory) IsRegistered(id string, ct models.ContainerType, t models.ConfigurationType) bool {
	return f.reg.isRegistered(id, configurationHint(ct, t))
}

// Create returns the capability.
func (f *ConfigurationCapabilityFactory) Create(id string, ct models.ContainerType, t models.ConfigurationType) (capability.ConfigurationCapability, error) {
	ctor, err := f.reg.lookup(RegistrationKey{Identity: FullIdentity(id, ct), Hint: configurationHint(ct, t)})
	if err != nil {
		return nil, err
	}
	return ctor(), nil
}

// DeployerConstructor builds a deployer for a container.
type DeployerConstructor func(c container.Container) (deployer.Deployer, error)

// DeployerFactory creates deployers by container id and deployer type.
type DeployerFactory struct {
	reg *hintRegistry[DeployerConstructor]
}

// NewDeployerFactory creates an empty factory.
func NewDeployerFactory() *DeployerFactory {
	return &DeployerFactory{reg: newHintRegistry[DeployerConstructor]("deployer")}
}

// Register maps (id, dt) to ctor.
func (f *DeployerFactory) Register(id string, dt models.DeployerType, ctor DeployerConstructor) {
	f.reg.register(id, string(dt), ctor)
}

// IsRegistered reports whether (id, dt) has a deployer.
func (f *DeployerFactory) IsRegistered(id string, dt models.DeployerType) bool {
	return f.reg.isRegistered(id, string(dt))
}

// Create builds the deployer of type dt for c.
func (f *DeployerFactory) Create(c container.Container, dt models.DeployerType) (deployer.Deployer, error) {
	ctor, err := f.reg.lookup(RegistrationKey{Identity: FullIdentity(c.ID(), c.Type()), Hint: string(dt)})
	if err != nil {
		return nil, err
	}
	return ctor(c)
}

// CreateDefault builds the deployer matching the container type.
func (f *DeployerFactory) CreateDefault(c container.Container) (deployer.Deployer, error) {
	dt := models.DeployerTypeFor(c.Type())
	if !f.IsRegistered(c.ID(), dt) {
		return nil, errUtils.Build(errUtils.Newf(errUtils.ErrNotRegistered,
			"no registered deployer matching your container's type of [%s]", c.Type())).
			Mark(errUtils.ErrUsage).
			Err()
	}
	return f.Create(c, dt)
}

// PackagerConstructor builds a packager writing to target.
type PackagerConstructor func(target string) (packager.Packager, error)

// PackagerFactory creates packagers by container id and packager type.
type PackagerFactory struct {
	reg *hintRegistry[PackagerConstructor]
}

// NewPackagerFactory creates an empty factory.
func NewPackagerFactory() *PackagerFactory {
	return &PackagerFactory{reg: newHintRegistry[PackagerConstructor]("packager")}
}

// Register maps (id, pt) to ctor.
func (f *PackagerFactory) Register(id string, pt models.PackagerType, ctor PackagerConstructor) {
	f.reg.register(id, string(pt), ctor)
}

// IsRegistered reports whether (id, pt) has a packager.
func (f *PackagerFactory) IsRegistered(id string, pt models.PackagerType) bool {
	return f.reg.isRegistered(id, string(pt))
}

// Create builds the packager.
func (f *PackagerFactory) Create(id string, pt models.PackagerType, target string) (packager.Packager, error) {
	ctor, err := f.reg.lookup(RegistrationKey{Identity: SimpleIdentity(id), Hint: string(pt)})
	if err != nil {
		return nil, err
	}
	return ctor(target)
}
