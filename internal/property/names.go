// Package property holds the configuration property vocabulary and the
// per-configuration property store.
//
// Property names are plain strings. The constants below are the documented
// vocabulary; vendor specific keys pass through the store untouched.
package property

import (
	"strings"
)

// General properties understood by every container.
const (
	Protocol                    = "cargo.protocol"
	Hostname                    = "cargo.hostname"
	Logging                     = "cargo.logging"
	JavaHome                    = "cargo.java.home"
	JVMArgs                     = "cargo.jvmargs"
	StartJVMArgs                = "cargo.start.jvmargs"
	RuntimeArgs                 = "cargo.runtime.args"
	RMIPort                     = "cargo.rmi.port"
	PortOffset                  = "cargo.port.offset"
	SpawnProcess                = "cargo.process.spawn"
	IgnoreNonExistingProperties = "cargo.ignore.non.existing.properties"
)

// Servlet container properties.
const (
	ServletPort  = "cargo.servlet.port"
	ServletUsers = "cargo.servlet.users"
)

// Remote deployment properties used by runtime configurations.
const (
	RemoteURI      = "cargo.remote.uri"
	RemoteUsername = "cargo.remote.username"
	RemotePassword = "cargo.remote.password"
)

// Datasource properties. A property whose name starts with DataSource holds
// a complete pipe separated datasource definition using the keys below.
const (
	DataSource                     = "cargo.datasource.datasource"
	DataSourceJNDILocation         = "cargo.datasource.jndi"
	DataSourceConnectionType       = "cargo.datasource.type"
	DataSourceTransactionSupport   = "cargo.datasource.transactionsupport"
	DataSourceDriverClass          = "cargo.datasource.driver"
	DataSourceURL                  = "cargo.datasource.url"
	DataSourceUsername             = "cargo.datasource.username"
	DataSourcePassword             = "cargo.datasource.password"
	DataSourceID                   = "cargo.datasource.id"
	DataSourceConnectionProperties = "cargo.datasource.properties"
)

// Resource properties. A property whose name starts with Resource holds a
// complete pipe separated resource definition using the keys below.
const (
	Resource           = "cargo.resource.resource"
	ResourceName       = "cargo.resource.name"
	ResourceType       = "cargo.resource.type"
	ResourceClass      = "cargo.resource.class"
	ResourceID         = "cargo.resource.id"
	ResourceParameters = "cargo.resource.parameters"
)

// Default values shared by every local configuration.
const (
	DefaultHostname    = "localhost"
	DefaultServletPort = "8080"
	DefaultProtocol    = "http"
	DefaultPortOffset  = "0"
)

const (
	portPrefix = "cargo."
	portSuffix = ".port"
)

// IsPortProperty reports whether name holds a port number that the port
// offset applies to: cargo.rmi.port, cargo.servlet.port and any other
// cargo.<name>.port property.
func IsPortProperty(name string) bool {
	return strings.HasPrefix(name, portPrefix) && strings.HasSuffix(name, portSuffix)
}
