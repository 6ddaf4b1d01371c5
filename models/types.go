package models

import "fmt"

// ConfigurationType describes how a configuration is materialized.
type ConfigurationType string

const (
	// Standalone configurations are built from scratch in a dedicated directory.
	Standalone ConfigurationType = "standalone"
	// Existing configurations point at a directory the user already prepared.
	Existing ConfigurationType = "existing"
	// Runtime configurations have no local files and talk to a running server.
	Runtime ConfigurationType = "runtime"
)

// ConfigurationTypes lists every configuration type in declaration order.
var ConfigurationTypes = []ConfigurationType{Standalone, Existing, Runtime}

// ParseConfigurationType converts a user supplied string into a ConfigurationType.
func ParseConfigurationType(s string) (ConfigurationType, error) {
	for _, t := range ConfigurationTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown configuration type [%s]", s)
}

// IsLocal reports whether the configuration owns a local directory.
func (t ConfigurationType) IsLocal() bool {
	return t == Standalone || t == Existing
}

// ContainerType describes how a container is run.
type ContainerType string

const (
	Installed ContainerType = "installed"
	Embedded  ContainerType = "embedded"
	Remote    ContainerType = "remote"
)

// ContainerTypes lists every container type in declaration order.
var ContainerTypes = []ContainerType{Installed, Embedded, Remote}

// ParseContainerType converts a user supplied string into a ContainerType.
func ParseContainerType(s string) (ContainerType, error) {
	for _, t := range ContainerTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown container type [%s]", s)
}

// IsLocal reports whether containers of this type run on this machine.
func (t ContainerType) IsLocal() bool {
	return t == Installed || t == Embedded
}

// DeployerType describes how deployables reach a container.
type DeployerType string

const (
	InstalledDeployer DeployerType = "installed"
	EmbeddedDeployer  DeployerType = "embedded"
	RemoteDeployer    DeployerType = "remote"
)

// DeployerTypeFor returns the deployer type matching a container type.
func DeployerTypeFor(t ContainerType) DeployerType {
	return DeployerType(t)
}

// PackagerType describes the output format of a packager.
type PackagerType string

// DirectoryPackager packages a container into a plain directory.
const DirectoryPackager PackagerType = "directory"

// State is the runtime state of a container.
type State string

const (
	StateUnknown  State = "unknown"
	StateStarting State = "starting"
	StateStarted  State = "started"
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
)
