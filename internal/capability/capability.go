// Package capability declares which configuration properties and which
// deployable types a container implementation honors.
//
// Capabilities are immutable once built and safe for concurrent reads, so a
// single value can be shared by every configuration of the same container.
package capability

import (
	"sort"

	"github.com/samber/lo"

	"github.com/codehaus-cargo/cargo-sub009/internal/property"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// ConfigurationCapability answers which properties a configuration supports.
type ConfigurationCapability interface {
	SupportsProperty(name string) bool
	Properties() []string
	SupportsMap() map[string]bool
}

// Map is an immutable ConfigurationCapability. A name missing from the map
// is unsupported.
type Map struct {
	supports map[string]bool
}

// New merges layers into a Map. Later layers override earlier ones, which is
// how a vendor capability refines one of the base defaults.
func New(layers ...map[string]bool) *Map {
	supports := make(map[string]bool)
	for _, layer := range layers {
		for name, ok := range layer {
			supports[name] = ok
		}
	}
	return &Map{supports: supports}
}

// SupportsProperty reports whether name is supported.
func (m *Map) SupportsProperty(name string) bool {
	return m.supports[name]
}

// Properties returns the supported property names, sorted.
func (m *Map) Properties() []string {
	names := lo.Keys(lo.PickBy(m.supports, func(_ string, ok bool) bool { return ok }))
	sort.Strings(names)
	return names
}

// SupportsMap returns a copy of the declaration, including explicit false entries.
func (m *Map) SupportsMap() map[string]bool {
	return lo.Assign(m.supports)
}

// LocalDefaults are honored by every local configuration.
func LocalDefaults() map[string]bool {
	return map[string]bool{
		property.Hostname:    true,
		property.Protocol:    true,
		property.ServletPort: true,
		property.PortOffset:  true,
		property.JavaHome:    true,
		property.JVMArgs:     true,
	}
}

// StandaloneDefaults are the base capabilities of a standalone configuration.
func StandaloneDefaults() map[string]bool {
	return lo.Assign(LocalDefaults(), map[string]bool{
		property.Logging:      true,
		property.RuntimeArgs:  true,
		property.SpawnProcess: true,
		property.StartJVMArgs: true,
	})
}

// ExistingDefaults are the base capabilities of an existing configuration.
// Hostname, protocol and servlet port are fixed by the existing install.
func ExistingDefaults() map[string]bool {
	return lo.Assign(LocalDefaults(), map[string]bool{
		property.Hostname:     false,
		property.Protocol:     false,
		property.ServletPort:  false,
		property.RuntimeArgs:  true,
		property.SpawnProcess: true,
	})
}

// RuntimeDefaults are the base capabilities of a runtime configuration.
func RuntimeDefaults() map[string]bool {
	return map[string]bool{
		property.Hostname:       true,
		property.Protocol:       true,
		property.ServletPort:    true,
		property.RemoteURI:      true,
		property.RemoteUsername: true,
		property.RemotePassword: true,
	}
}

// DefaultsFor returns the base capabilities for a configuration type.
func DefaultsFor(t models.ConfigurationType) map[string]bool {
	switch t {
	case models.Standalone:
		return StandaloneDefaults()
	case models.Existing:
		return ExistingDefaults()
	default:
		return RuntimeDefaults()
	}
}
