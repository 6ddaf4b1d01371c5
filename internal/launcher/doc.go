// Package launcher provides the ways a local container process is run:
// a forked executable, a Docker container or plain Go functions for
// embedded servers.
package launcher
