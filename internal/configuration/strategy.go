package configuration

import (
	"context"
	"os"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
)

// strategy holds what differs between configuration types.
type strategy interface {
	defaults(p *property.Store)
	verify(c *Configuration) error
	prepare(ctx context.Context, c *Configuration) error
}

func localDefaults(p *property.Store) {
	p.SetDefault(property.Hostname, property.DefaultHostname)
	p.SetDefault(property.ServletPort, property.DefaultServletPort)
	p.SetDefault(property.Protocol, property.DefaultProtocol)
	p.SetDefault(property.PortOffset, property.DefaultPortOffset)
}

type standaloneStrategy struct{}

func (standaloneStrategy) defaults(p *property.Store) {
	localDefaults(p)
	p.SetDefault(property.Logging, string(property.LoggingMedium))
	p.SetDefault(property.IgnoreNonExistingProperties, "false")
}

func (standaloneStrategy) verify(*Configuration) error { return nil }

func (standaloneStrategy) prepare(_ context.Context, c *Configuration) error {
	return SetupConfigurationDir(c.home, c.logger)
}

type existingStrategy struct{}

func (existingStrategy) defaults(p *property.Store) {
	localDefaults(p)
}

func (existingStrategy) verify(*Configuration) error { return nil }

// prepare only checks the directory; an existing home is never wiped or stamped.
func (existingStrategy) prepare(_ context.Context, c *Configuration) error {
	info, err := os.Stat(c.home)
	if err != nil {
		return errUtils.Usagef("existing configuration home [%s] does not exist; configure the container before using it", c.home)
	}
	if !info.IsDir() {
		return errUtils.Usagef("existing configuration home [%s] is not a directory", c.home)
	}
	return nil
}

type runtimeStrategy struct{}

func (runtimeStrategy) defaults(p *property.Store) {
	p.SetDefault(property.Hostname, property.DefaultHostname)
	p.SetDefault(property.ServletPort, property.DefaultServletPort)
	p.SetDefault(property.Protocol, property.DefaultProtocol)
}

func (runtimeStrategy) verify(*Configuration) error { return nil }

func (runtimeStrategy) prepare(context.Context, *Configuration) error { return nil }
