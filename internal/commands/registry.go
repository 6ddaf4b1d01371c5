package commands

import (
	"github.com/codehaus-cargo/cargo-sub009/internal/config"
	"github.com/codehaus-cargo/cargo-sub009/internal/configuration"
	"github.com/codehaus-cargo/cargo-sub009/internal/containers/docker"
	"github.com/codehaus-cargo/cargo-sub009/internal/containers/generic"
	"github.com/codehaus-cargo/cargo-sub009/internal/descriptor"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/factory"
)

// builtinProviders are the container implementations shipped with cargo.
func builtinProviders() factory.Providers {
	return factory.Providers{
		generic.Provider(),
		docker.Provider(nil),
	}
}

// newRegistry creates the registry every command resolves containers
// from, with -D flags, environment and config file overrides applied to
// each configuration.
func newRegistry() (*factory.Registry, error) {
	flags, err := config.ParseOverrides(properties)
	if err != nil {
		return nil, errUtils.Build(errUtils.Wrapf(err, errUtils.ErrUsage, "invalid -D flag")).
			WithHint("Use -D name=value, for example -D cargo.servlet.port=8080").
			Err()
	}
	lookup, err := cfg.PropertyOverrides(flags)
	if err != nil {
		return nil, errUtils.Wrapf(err, errUtils.ErrConfiguration, "invalid overrides")
	}

	r := factory.New(
		factory.WithLogger(logger),
		factory.WithScratchDir(cfg.Container.ScratchDir),
		factory.WithConfigurationOptions(configuration.WithOverrides(lookup)),
	)
	names := r.Discover(builtinProviders())
	logger.Debug("registered containers", "providers", names)
	return r, nil
}

// loadRun reads a descriptor file and resolves it against a new registry.
func loadRun(path string) (*descriptor.Run, error) {
	run, _, err := loadRunWithRegistry(path)
	return run, err
}

func loadRunWithRegistry(path string) (*descriptor.Run, *factory.Registry, error) {
	d, err := descriptor.Load(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := newRegistry()
	if err != nil {
		return nil, nil, err
	}
	run, err := d.Build(r, cfg.Container)
	return run, r, err
}
