// Package factory resolves container ids and type hints to constructors.
//
// Extensions register constructor closures into a Registry when they are
// discovered; nothing is looked up by reflection. Registering the same key
// twice replaces the previous constructor.
package factory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/models"
)

// ContainerIdentity names a container implementation.
type ContainerIdentity struct {
	ID   string
	Type models.ContainerType
}

// SimpleIdentity identifies a container by id only.
func SimpleIdentity(id string) ContainerIdentity {
	return ContainerIdentity{ID: id}
}

// FullIdentity identifies a container by id and type.
func FullIdentity(id string, t models.ContainerType) ContainerIdentity {
	return ContainerIdentity{ID: id, Type: t}
}

func (i ContainerIdentity) String() string {
	if i.Type == "" {
		return fmt.Sprintf("container [id = [%s]]", i.ID)
	}
	return fmt.Sprintf("container [id = [%s], type = [%s]]", i.ID, i.Type)
}

// RegistrationKey is a container identity plus the hint that selects one
// of its implementations.
type RegistrationKey struct {
	Identity ContainerIdentity
	Hint     string
}

func (k RegistrationKey) String() string {
	if k.Hint == "" {
		return k.Identity.String()
	}
	return fmt.Sprintf("%s, hint = [%s]", k.Identity, k.Hint)
}

// hintRegistry maps (container id, hint) to a value.
type hintRegistry[V any] struct {
	kind    string
	mu      sync.RWMutex
	entries map[string]map[string]V
}

func newHintRegistry[V any](kind string) *hintRegistry[V] {
	return &hintRegistry[V]{kind: kind, entries: make(map[string]map[string]V)}
}

func (r *hintRegistry[V]) register(id, hint string, v V) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byHint, ok := r.entries[id]
	if !ok {
		byHint = make(map[string]V)
		r.entries[id] = byHint
	}
	byHint[hint] = v
}

func (r *hintRegistry[V]) isRegistered(id, hint string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[id][hint]
	return ok
}

// lookup returns the value for key or a usage error listing the hints that
// are registered for the id.
func (r *hintRegistry[V]) lookup(key RegistrationKey) (V, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.entries[key.Identity.ID][key.Hint]; ok {
		return v, nil
	}

	var zero V
	hints := lo.Keys(r.entries[key.Identity.ID])
	sort.Strings(hints)

	msg := fmt.Sprintf("cannot create %s: there is no registered %s for the parameters (%s)", r.kind, r.kind, key)
	if len(hints) > 0 && !(len(hints) == 1 && hints[0] == "") {
		msg += ". Valid hints for this container are: " + strings.Join(hints, ", ")
	}
	return zero, errUtils.Build(errUtils.Newf(errUtils.ErrNotRegistered, "%s", msg)).Mark(errUtils.ErrUsage).Err()
}

func (r *hintRegistry[V]) hints(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hints := lo.Keys(r.entries[id])
	sort.Strings(hints)
	return hints
}

func (r *hintRegistry[V]) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := lo.Keys(r.entries)
	sort.Strings(ids)
	return ids
}
