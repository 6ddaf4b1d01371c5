package monitor

import (
	"context"
	"net"
	"strconv"
	"time"
)

// PortMonitor reports a TCP port as available while something accepts
// connections on it.
type PortMonitor struct {
	host    string
	port    int
	timeout time.Duration
}

// NewPortMonitor creates a monitor for host:port. A zero dial timeout uses
// one second.
func NewPortMonitor(host string, port int, dialTimeout time.Duration) *PortMonitor {
	if dialTimeout <= 0 {
		dialTimeout = time.Second
	}
	return &PortMonitor{host: host, port: port, timeout: dialTimeout}
}

// IsAvailable dials the port once.
func (m *PortMonitor) IsAvailable(ctx context.Context) bool {
	d := net.Dialer{Timeout: m.timeout}
	conn, err := d.DialContext(ctx, "tcp", m.address())
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// InUse is a one shot check that host:port is bound.
func InUse(ctx context.Context, host string, port int) bool {
	return NewPortMonitor(host, port, 250*time.Millisecond).IsAvailable(ctx)
}

func (m *PortMonitor) address() string {
	return net.JoinHostPort(m.host, strconv.Itoa(m.port))
}

func (m *PortMonitor) String() string {
	return "port " + m.address()
}
