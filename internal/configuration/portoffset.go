package configuration

import (
	"strconv"

	"github.com/codehaus-cargo/cargo-sub009/internal/property"
)

// ApplyPortOffset adds cargo.port.offset to every port property that does not
// carry the offset yet. Properties that are unset or not numeric are skipped.
// The offset is read on every call.
func (c *Configuration) ApplyPortOffset() {
	offset, ok := c.portOffset()
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range c.portPropertyNames() {
		if c.offsetApplied[name] {
			continue
		}
		port, ok := c.storedInt(name)
		if !ok {
			continue
		}
		c.props.Set(name, strconv.Itoa(port+offset))
		c.offsetApplied[name] = true
	}
}

// RevertPortOffset subtracts cargo.port.offset from every property the offset
// was applied to and clears its flag.
func (c *Configuration) RevertPortOffset() {
	offset, ok := c.portOffset()
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range c.portPropertyNames() {
		if !c.offsetApplied[name] {
			continue
		}
		if port, ok := c.storedInt(name); ok {
			c.props.Set(name, strconv.Itoa(port-offset))
		}
		delete(c.offsetApplied, name)
	}
}

// IsOffsetApplied reports whether the offset is currently applied to name.
func (c *Configuration) IsOffsetApplied(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offsetApplied[name]
}

// PortProperties returns every stored port property with its effective value.
func (c *Configuration) PortProperties() map[string]string {
	out := make(map[string]string)
	for _, name := range c.portPropertyNames() {
		out[name] = c.props.Value(name)
	}
	return out
}

// portOffset returns the offset in effect; a missing, zero or malformed
// offset disables the transformation.
func (c *Configuration) portOffset() (int, bool) {
	raw, ok := c.props.Get(property.PortOffset)
	if !ok {
		return 0, false
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset == 0 {
		return 0, false
	}
	return offset, true
}

// portPropertyNames works on stored values only so overrides never leak
// into the stored map.
func (c *Configuration) portPropertyNames() []string {
	var names []string
	for _, name := range c.props.Names() {
		if property.IsPortProperty(name) {
			names = append(names, name)
		}
	}
	return names
}

func (c *Configuration) storedInt(name string) (int, bool) {
	raw, ok := c.props.Stored(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
