package property

import "sync"

// NoOverrides is a Lookup that never overrides anything.
func NoOverrides(string) (string, bool) {
	return "", false
}

// Overrides is a mutable, concurrency safe set of overrides.
type Overrides struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewOverrides creates an empty override set.
func NewOverrides() *Overrides {
	return &Overrides{values: make(map[string]string)}
}

// Set overrides name with value.
func (o *Overrides) Set(name, value string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.values[name] = value
}

// Clear removes the override for name.
func (o *Overrides) Clear(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.values, name)
}

// Lookup implements the Lookup signature.
func (o *Overrides) Lookup(name string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.values[name]
	return v, ok
}

// Chain combines lookups; the first one that resolves a name wins.
func Chain(lookups ...Lookup) Lookup {
	return func(name string) (string, bool) {
		for _, l := range lookups {
			if l == nil {
				continue
			}
			if v, ok := l(name); ok {
				return v, true
			}
		}
		return "", false
	}
}
