package extension

import "fmt"

// Registry is an insertion-ordered collection of extension descriptors. Order
// is surfaced verbatim in the generated prompt, so it must be deterministic.
// The registry is immutable after construction; no synchronization is needed.
type Registry struct {
	ordered []Descriptor
	byName  map[string]int
}

// NewRegistry builds a registry from descriptors in the given order. Two
// descriptors sharing a name is a configuration error and fails fast so a
// misconfigured deployment never reaches request handling.
func NewRegistry(descriptors []Descriptor) (*Registry, error) {
	r := &Registry{
		ordered: make([]Descriptor, 0, len(descriptors)),
		byName:  make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("extension with empty name")
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("duplicate extension name %q", d.Name)
		}
		if d.Schema == nil {
			return nil, fmt.Errorf("extension %q has no schema", d.Name)
		}
		if d.Render == nil {
			return nil, fmt.Errorf("extension %q has no render function", d.Name)
		}
		r.byName[d.Name] = len(r.ordered)
		r.ordered = append(r.ordered, d)
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on configuration errors. Intended
// for process startup.
func MustRegistry(descriptors []Descriptor) *Registry {
	r, err := NewRegistry(descriptors)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.ordered[i], true
}

// All returns descriptors in registration order. The returned slice is a copy.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.ordered)
}
