// Package configuration models how one container instance is set up.
//
// A Configuration owns its property store and the deployables, resources
// and datasources registered by the caller. Configure materializes it in
// a fixed order: verify, prepare the directory, write files, install
// static deployables. The directory step depends on the configuration
// type; standalone homes are wiped and rebuilt only when cargo created
// them, existing homes are used as is and runtime configurations have no
// home at all.
package configuration

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/codehaus-cargo/cargo-sub009/internal/capability"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// Configuration is a container configuration of one of the three types.
type Configuration struct {
	kind       models.ConfigurationType
	home       string
	props      *property.Store
	capability capability.ConfigurationCapability
	strategy   strategy
	writer     Writer
	logger     *log.Logger

	mu            sync.Mutex
	deployables   []*models.Deployable
	resources     []*models.Resource
	dataSources   []*models.DataSource
	files         []models.FileConfig
	offsetApplied map[string]bool
	parsed        bool
	phase         Phase
}

// Option customizes a Configuration.
type Option func(*options)

type options struct {
	capability capability.ConfigurationCapability
	overrides  property.Lookup
	writer     Writer
	logger     *log.Logger
}

// WithCapability sets the capability the configuration is validated against.
// Without it the base defaults of the configuration type are used.
func WithCapability(c capability.ConfigurationCapability) Option {
	return func(o *options) { o.capability = c }
}

// WithOverrides sets the process wide property override lookup.
func WithOverrides(l property.Lookup) Option {
	return func(o *options) { o.overrides = l }
}

// WithWriter sets the vendor hook that writes configuration files.
func WithWriter(w Writer) Option {
	return func(o *options) { o.writer = w }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a configuration. Standalone and existing configurations need a
// home; runtime configurations must not have one.
func New(kind models.ConfigurationType, home string, opts ...Option) (*Configuration, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}

	var s strategy
	switch kind {
	case models.Standalone:
		s = standaloneStrategy{}
	case models.Existing:
		s = existingStrategy{}
	case models.Runtime:
		s = runtimeStrategy{}
	default:
		return nil, errUtils.Usagef("unknown configuration type [%s]", kind)
	}

	if kind.IsLocal() && home == "" {
		return nil, errUtils.Usagef("a %s configuration requires a home directory", kind)
	}
	if !kind.IsLocal() && home != "" {
		return nil, errUtils.Usagef("a runtime configuration has no home directory, got [%s]", home)
	}

	if o.capability == nil {
		o.capability = capability.New(capability.DefaultsFor(kind))
	}

	c := &Configuration{
		kind:          kind,
		home:          home,
		props:         property.NewStore(o.overrides, o.logger),
		capability:    o.capability,
		strategy:      s,
		writer:        o.writer,
		logger:        o.logger.With("configuration", string(kind)),
		offsetApplied: make(map[string]bool),
		phase:         PhaseUnconfigured,
	}
	s.defaults(c.props)
	return c, nil
}

// Type returns the configuration type.
func (c *Configuration) Type() models.ConfigurationType { return c.kind }

// Home returns the configuration directory, empty for runtime configurations.
func (c *Configuration) Home() string { return c.home }

// Capability returns the capability the configuration is validated against.
func (c *Configuration) Capability() capability.ConfigurationCapability { return c.capability }

// SetProperty stores a property value.
func (c *Configuration) SetProperty(name, value string) { c.props.Set(name, value) }

// PropertyValue returns the effective value of a property, or "" when unset.
func (c *Configuration) PropertyValue(name string) string { return c.props.Value(name) }

// Property returns the effective value of a property and whether it is set.
func (c *Configuration) Property(name string) (string, bool) { return c.props.Get(name) }

// Properties returns a copy of the stored properties.
func (c *Configuration) Properties() map[string]string { return c.props.All() }

// EffectiveProperties returns the stored properties with overrides applied.
func (c *Configuration) EffectiveProperties() map[string]string { return c.props.Effective() }

// AddFile registers a file or directory to copy into the home during Configure.
func (c *Configuration) AddFile(f models.FileConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, f)
}

// Files returns the registered file configurations.
func (c *Configuration) Files() []models.FileConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.FileConfig(nil), c.files...)
}
