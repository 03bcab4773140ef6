package accessor

import (
	"github.com/0x4d31/matcherd/internal/evalctx"
	"github.com/0x4d31/matcherd/internal/value"
)

// CustomFunc resolves a user-defined root. Implementations must be pure with respect to
// the event, or explicitly documented as time-dependent so property-based
// tests can freeze them.
type CustomFunc func(ie *evalctx.InternalEvent) (value.Value, bool)

// Registry holds engine-registered custom roots, consulted when compiling
// the root identifier of a path.
type Registry struct {
	roots map[string]CustomFunc
}

// NewRegistry creates an empty custom-root registry.
func NewRegistry() *Registry {
	return &Registry{roots: make(map[string]CustomFunc)}
}

// Register adds a named custom root. Registering "event" or "_variables"
// panics — those roots are reserved by the engine.
func (r *Registry) Register(name string, fn CustomFunc) {
	if name == RootEvent || name == RootVariables {
		panic("accessor: cannot override reserved root " + name)
	}
	r.roots[name] = fn
}

func (r *Registry) lookup(name string) (CustomFunc, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.roots[name]
	return fn, ok
}

// Now returns a CustomFunc that resolves to whatever clock returns, for
// registering a time-dependent root such as "now". It does not register
// anything itself; the caller passes the result to Register. Because the
// value comes from clock, property tests can pass a fixed clock.
func Now(clock func() value.Value) CustomFunc {
	return func(_ *evalctx.InternalEvent) (value.Value, bool) {
		return clock(), true
	}
}
