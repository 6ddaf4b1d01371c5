package configuration

import (
	"context"
	"os"
	"strconv"
	"strings"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
)

// Phase is the lifecycle position of a configuration. Phases only move forward.
type Phase int

const (
	PhaseUnconfigured Phase = iota
	PhaseVerified
	PhaseDirectoryPrepared
	PhaseFilesWritten
	PhaseDeployed
)

func (p Phase) String() string {
	switch p {
	case PhaseUnconfigured:
		return "unconfigured"
	case PhaseVerified:
		return "verified"
	case PhaseDirectoryPrepared:
		return "directory-prepared"
	case PhaseFilesWritten:
		return "files-written"
	case PhaseDeployed:
		return "deployed"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// Phase returns the last lifecycle phase reached.
func (c *Configuration) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// IsConfigured reports whether Configure completed.
func (c *Configuration) IsConfigured() bool {
	return c.Phase() == PhaseDeployed
}

func (c *Configuration) advance(p Phase) {
	c.mu.Lock()
	if p > c.phase {
		c.phase = p
	}
	c.mu.Unlock()

	c.logger.Debug("configuration phase", "phase", p.String())
}

// Configure materializes the configuration for owner. It is a no-op once
// the configuration reached PhaseDeployed. Any failure is returned wrapped
// with the owner name and configuration type; the phase stays at the last
// step that completed.
func (c *Configuration) Configure(ctx context.Context, owner Owner) error {
	if c.IsConfigured() {
		return nil
	}

	c.logger.Info("configuring", "container", owner.Name(), "home", c.home)

	c.setDefaultJavaHome()
	c.parsePendingProperties()

	if err := c.Verify(); err != nil {
		return c.wrap(owner, err)
	}
	c.advance(PhaseVerified)

	if err := c.strategy.prepare(ctx, c); err != nil {
		return c.wrap(owner, err)
	}
	c.advance(PhaseDirectoryPrepared)

	tokens := NewTokens(c.props.Effective())
	if c.writer != nil {
		if err := c.writer.WriteFiles(ctx, c, owner, tokens); err != nil {
			return c.wrap(owner, err)
		}
	}
	if err := c.copyFiles(tokens); err != nil {
		return c.wrap(owner, err)
	}
	c.advance(PhaseFilesWritten)

	if installer, ok := owner.(Installer); ok {
		for _, d := range c.Deployables() {
			if err := ctx.Err(); err != nil {
				return c.wrap(owner, err)
			}
			if err := installer.InstallDeployable(ctx, d); err != nil {
				return c.wrap(owner, err)
			}
		}
	}
	c.advance(PhaseDeployed)

	c.logger.Info("configured", "container", owner.Name(), "deployables", len(c.Deployables()))
	return nil
}

func (c *Configuration) wrap(owner Owner, err error) error {
	return errUtils.Wrapf(err, errUtils.ErrConfiguration, "failed to create a %s %s configuration", owner.Name(), c.kind)
}

// Verify checks the configuration before anything touches the filesystem:
// resources and datasources must be supported, port properties must be
// integers and the logging level must be valid.
func (c *Configuration) Verify() error {
	violations := append(c.unsupportedResources(), c.unsupportedDataSources()...)
	if err := c.unsupportedError(violations); err != nil {
		return err
	}

	for name, raw := range c.PortProperties() {
		if _, err := parsePort(raw); err != nil {
			return errUtils.Newf(errUtils.ErrInvalidProperty, "invalid port [%s] for property %s", raw, name)
		}
	}
	if raw, ok := c.props.Get(property.PortOffset); ok {
		if _, err := strconv.Atoi(raw); err != nil {
			return errUtils.Newf(errUtils.ErrInvalidProperty, "invalid port offset [%s]", raw)
		}
	}
	if raw, ok := c.props.Get(property.Logging); ok {
		if _, err := property.ParseLoggingLevel(raw); err != nil {
			return err
		}
	}

	c.warnUnsupportedProperties()
	return c.strategy.verify(c)
}

func (c *Configuration) warnUnsupportedProperties() {
	if c.props.Value(property.IgnoreNonExistingProperties) == "true" {
		return
	}
	for _, name := range c.props.Names() {
		if !strings.HasPrefix(name, "cargo.") || isInternalProperty(name) {
			continue
		}
		if !c.capability.SupportsProperty(name) {
			c.logger.Warn("property not supported by this configuration", "property", name)
		}
	}
}

// isInternalProperty covers properties every configuration accepts
// regardless of its capability.
func isInternalProperty(name string) bool {
	return name == property.IgnoreNonExistingProperties ||
		strings.HasPrefix(name, property.Resource) ||
		strings.HasPrefix(name, property.DataSource)
}

func (c *Configuration) setDefaultJavaHome() {
	if _, ok := c.props.Get(property.JavaHome); ok {
		return
	}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		c.props.Set(property.JavaHome, home)
	}
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if port < 0 || port > 65535 {
		return 0, strconv.ErrRange
	}
	return port, nil
}
