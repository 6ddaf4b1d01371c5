package property

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

// Lookup resolves a process wide override for a property name.
type Lookup func(name string) (string, bool)

// Store maps property names to string values for one configuration.
//
// Reads consult the override lookup first and fall back to the stored
// value. Overrides are never copied into the stored map.
type Store struct {
	mu       sync.RWMutex
	values   map[string]string
	override Lookup
	logger   *log.Logger
}

// NewStore creates an empty store. A nil override disables overrides and a
// nil logger uses the default logger.
func NewStore(override Lookup, logger *log.Logger) *Store {
	if override == nil {
		override = NoOverrides
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		values:   make(map[string]string),
		override: override,
		logger:   logger,
	}
}

// Set stores value under name.
func (s *Store) Set(name, value string) {
	s.mu.Lock()
	s.values[name] = value
	s.mu.Unlock()

	s.logger.Debug("property set", "name", name, "value", value)
}

// SetDefault stores value unless name already has a stored value.
func (s *Store) SetDefault(name, value string) {
	s.mu.Lock()
	_, exists := s.values[name]
	if !exists {
		s.values[name] = value
	}
	s.mu.Unlock()

	if !exists {
		s.logger.Debug("property default", "name", name, "value", value)
	}
}

// Unset removes the stored value of name.
func (s *Store) Unset(name string) {
	s.mu.Lock()
	delete(s.values, name)
	s.mu.Unlock()

	s.logger.Debug("property unset", "name", name)
}

// Get returns the effective value of name: the override if present, else the
// stored value.
func (s *Store) Get(name string) (string, bool) {
	if v, ok := s.override(name); ok {
		return v, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// Value returns the effective value of name or "" when unset.
func (s *Store) Value(name string) string {
	v, _ := s.Get(name)
	return v
}

// Stored returns the stored value of name, ignoring overrides.
func (s *Store) Stored(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// All returns a copy of the stored properties.
func (s *Store) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Assign(s.values)
}

// Effective returns a copy of the stored properties with overrides applied to
// every stored name.
func (s *Store) Effective() map[string]string {
	all := s.All()
	for name := range all {
		if v, ok := s.override(name); ok {
			all[name] = v
		}
	}
	return all
}

// Names returns the stored property names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	names := lo.Keys(s.values)
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}
