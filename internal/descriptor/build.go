package descriptor

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/codehaus-cargo/cargo-sub009/internal/config"
	"github.com/codehaus-cargo/cargo-sub009/internal/container"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/factory"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Run is a descriptor resolved against a registry: the container with its
// configuration filled in, ready to start or configure.
type Run struct {
	Descriptor  *Descriptor
	Container   container.Container
	Deployables []*models.Deployable

	registry *factory.Registry
}

// Build creates the container the descriptor names. Container defaults
// from the application configuration apply where the descriptor is silent.
func (d *Descriptor) Build(r *factory.Registry, defaults config.ContainerConfig) (*Run, error) {
	ct, err := d.ContainerType()
	if err != nil {
		return nil, err
	}
	t, err := d.ConfigurationType()
	if err != nil {
		return nil, err
	}

	c, err := r.CreateContainer(d.Container.ID, ct, t, d.Configuration.Home)
	if err != nil {
		return nil, err
	}

	cfg := c.Configuration()
	for name, value := range d.Configuration.Properties {
		cfg.SetProperty(name, value)
	}
	for _, f := range d.Configuration.Files {
		cfg.AddFile(f)
	}
	for i := range d.Configuration.DataSources {
		ds := d.Configuration.DataSources[i]
		cfg.AddDataSource(&ds)
	}
	for i := range d.Configuration.Resources {
		res := d.Configuration.Resources[i]
		cfg.AddResource(&res)
	}

	deployables := make([]*models.Deployable, 0, len(d.Deployables))
	for _, spec := range d.Deployables {
		dep := models.NewDeployable(models.DeployableType(spec.Type), spec.File)
		dep.Context = spec.Context
		if c.Capability() != nil && !c.Capability().SupportsDeployableType(dep.Type) {
			return nil, errUtils.Capabilityf("the %s container does not support %s deployables", c.Name(), dep.Type)
		}
		deployables = append(deployables, dep)
	}

	if local, ok := c.(*container.Local); ok {
		for _, dep := range deployables {
			cfg.AddDeployable(dep)
		}
		if err := local.Apply(d.localOptions(c, r.Logger(), defaults)...); err != nil {
			return nil, err
		}
	}

	return &Run{Descriptor: d, Container: c, Deployables: deployables, registry: r}, nil
}

func (d *Descriptor) localOptions(c container.Container, logger *log.Logger, defaults config.ContainerConfig) []container.LocalOption {
	cs := d.Container
	opts := []container.LocalOption{
		container.WithLogger(logger.With("container", c.ID())),
		container.WithTimeout(defaults.Timeout),
	}
	if defaults.PostStopDelay > 0 {
		opts = append(opts, container.WithPostStopDelay(defaults.PostStopDelay))
	}
	if cs.Timeout != nil {
		opts = append(opts, container.WithTimeout(*cs.Timeout))
	}
	if cs.PostStopDelay != nil {
		opts = append(opts, container.WithPostStopDelay(*cs.PostStopDelay))
	}
	if cs.Home != "" {
		opts = append(opts, container.WithHome(cs.Home))
	}

	output := cs.Output
	if output == "" && defaults.OutputDir != "" {
		output = filepath.Join(defaults.OutputDir, c.ID()+".log")
	}
	if output != "" {
		opts = append(opts, container.WithOutput(output, cs.Append))
	}

	pingPath := cs.PingPath
	if pingPath == "" {
		pingPath = defaults.PingPath
	}
	if pingPath != "" || cs.PingContains != "" {
		opts = append(opts, container.WithPing(pingPath, cs.PingContains))
	}
	if cs.PingURL != "" {
		opts = append(opts, container.WithPingURL(cs.PingURL))
	}
	return opts
}

// Controllable returns the container when this process can start and stop it.
func (r *Run) Controllable() (container.Controllable, error) {
	c, ok := r.Container.(container.Controllable)
	if !ok {
		return nil, errUtils.Build(errUtils.Capabilityf("the %s container of type %s cannot be started or stopped", r.Container.Name(), r.Container.Type())).
			WithHint("use a deployer to manage deployables on remote containers").
			Err()
	}
	return c, nil
}

// Configure materializes the configuration without launching the container.
func (r *Run) Configure(ctx context.Context) error {
	return r.Container.Configuration().Configure(ctx, r.Container)
}

// Deploy hot deploys every deployable through the container's default
// deployer.
func (r *Run) Deploy(ctx context.Context) error {
	dep, err := r.registry.Deployers.CreateDefault(r.Container)
	if err != nil {
		return err
	}
	return r.each(ctx, dep.Deploy)
}

// Undeploy removes every deployable through the container's default deployer.
func (r *Run) Undeploy(ctx context.Context) error {
	dep, err := r.registry.Deployers.CreateDefault(r.Container)
	if err != nil {
		return err
	}
	return r.each(ctx, dep.Undeploy)
}

func (r *Run) each(ctx context.Context, fn func(context.Context, *models.Deployable) error) error {
	for _, d := range r.Deployables {
		if err := fn(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
