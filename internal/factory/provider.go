package factory

// Provider is an extension that registers its implementations into a
// Registry. Register must only add registrations.
type Provider interface {
	Name() string
	Register(r *Registry)
}

type funcProvider struct {
	name string
	fn   func(*Registry)
}

func (p funcProvider) Name() string         { return p.name }
func (p funcProvider) Register(r *Registry) { p.fn(r) }

// NewProvider wraps a registration function as a Provider.
func NewProvider(name string, fn func(*Registry)) Provider {
	return funcProvider{name: name, fn: fn}
}

// Source yields the providers found at one discovery location.
type Source interface {
	Providers() []Provider
}

// Providers is a fixed list of providers.
type Providers []Provider

// Providers returns the list itself.
func (p Providers) Providers() []Provider { return p }

// SourceFunc adapts a function to Source.
type SourceFunc func() []Provider

// Providers calls f.
func (f SourceFunc) Providers() []Provider { return f() }

// Discover registers the providers of every source. Sources are given from
// highest to lowest priority: a provider name seen in a higher priority
// source shadows the same name further down, and higher priority providers
// register last so their registrations win on conflicting keys. Finding no
// provider at all is not an error. Discover returns the names of the
// providers that registered, in registration order.
func (r *Registry) Discover(sources ...Source) []string {
	seen := make(map[string]bool)
	var ordered []Provider
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, p := range src.Providers() {
			if p == nil || seen[p.Name()] {
				continue
			}
			seen[p.Name()] = true
			ordered = append(ordered, p)
		}
	}

	names := make([]string, 0, len(ordered))
	for i := len(ordered) - 1; i >= 0; i-- {
		p := ordered[i]
		p.Register(r)
		names = append(names, p.Name())
		r.logger.Debug("registered provider", "provider", p.Name())
	}
	if len(names) == 0 {
		r.logger.Debug("no container provider found")
	}
	return names
}
