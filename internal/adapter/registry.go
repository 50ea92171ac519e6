package adapter

import "context"

// Registry is the ordered list of known adapters.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry probing adapters in the given order.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// DefaultRegistry returns GoogleTest then Boost, both built with opts.
func DefaultRegistry(opts ...Option) *Registry {
	return NewRegistry(NewGoogleTest(opts...), NewBoost(opts...))
}

// Adapters returns the registered adapters in probe order.
func (r *Registry) Adapters() []Adapter {
	return append([]Adapter(nil), r.adapters...)
}

// Register appends an adapter; it is probed after the existing ones.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Detect returns the first adapter recognizing the executable, or nil.
func (r *Registry) Detect(ctx context.Context, path string) Adapter {
	for _, a := range r.adapters {
		if a.IsTestSuite(ctx, path) {
			return a
		}
	}
	return nil
}

// Lookup returns the adapter with the given name, or nil.
func (r *Registry) Lookup(name string) Adapter {
	for _, a := range r.adapters {
		if a.Name() == name {
			return a
		}
	}
	return nil
}
