// Package cargo drives Java application servers through one API,
// whatever the server.
//
// # Overview
//
// Cargo creates server configurations, starts and stops servers, deploys
// archives into them and packages configured servers for shipping. The
// same run descriptor works for an installed server, one embedded in the
// cargo process, a server running in a Docker container, or a remote
// server that only accepts deployments.
//
// The library consists of a few layers:
//   - Capabilities: which deployable types a container and which
//     properties a configuration support
//   - Configurations: properties with overrides, files, datasources and
//     resources, materialized into a home directory
//   - Containers: the lifecycle state machine with readiness watchdogs
//   - Factories: a registry resolving (container id, type) to
//     implementations, filled by providers at startup
//   - Daemon: an HTTP service starting descriptors on behalf of clients
//
// # Architecture
//
//	┌─────────────────┐       ┌─────────────────┐
//	│   cargo CLI     │──────►│  cargo daemon   │
//	│   (Cobra)       │ HTTP  │  (Echo REST)    │
//	└────────┬────────┘       └────────┬────────┘
//	         │                         │
//	┌────────▼─────────────────────────▼────────┐
//	│      factory registry (providers)         │
//	└────────┬─────────────────────────┬────────┘
//	         │                         │
//	┌────────▼────────┐       ┌────────▼────────┐
//	│  configuration  │       │   container     │
//	│  (properties)   │       │  (lifecycle)    │
//	└─────────────────┘       └─────────────────┘
//
// # Usage
//
// Start a server and stop it on Ctrl-C:
//
//	cargo run tomcat.yaml -D cargo.servlet.port=9090
//
// Run the daemon and start a handle through it:
//
//	cargo daemon --config cargo.yaml
//	cargo remote start shop tomcat.yaml --autostart
//
// # Run Descriptors
//
//	container:
//	  id: generic
//	  type: installed
//	  home: /opt/tomcat
//	  timeout: 2m
//	configuration:
//	  type: standalone
//	  home: /var/lib/cargo/tomcat
//	  properties:
//	    cargo.servlet.port: "8080"
//	    cargo.generic.start.command: bin/catalina.sh run
//	    cargo.generic.stop.command: bin/catalina.sh stop
//	deployables:
//	  - type: war
//	    file: target/shop.war
//	    context: /store
//
// # Configuration
//
// Application settings come from cargo.yaml, a .env file and CARGO_
// environment variables. See package internal/config.
package cargo
