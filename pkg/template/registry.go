package template

import (
	"sort"
	"sync"

	"github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/geom"
)

// Registry maps component type tags to template specs. It provides
// thread-safe registration and lookup; a populated registry is read-only
// in practice and safe for concurrent use by parallel assemble calls.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*Spec
	dims  map[string]geom.Dimension
}

// NewRegistry creates an empty registry with the default category
// dimensions. Use [Default] for a registry with all built-in component
// types registered.
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]*Spec),
		dims:  DefaultDimensions(),
	}
}

// Register adds a template spec to the registry.
// Returns an error when the spec is incomplete or its type tag is
// already registered.
func (r *Registry) Register(spec *Spec) error {
	if spec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "template spec cannot be nil")
	}
	if err := errors.ValidateComponentType(spec.Type); err != nil {
		return err
	}
	if spec.Render == nil {
		return errors.New(errors.ErrCodeInvalidInput, "template %s has no render function", spec.Type)
	}
	if _, ok := r.dimension(spec.Category); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "template %s has unknown category %q", spec.Type, spec.Category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.specs[spec.Type]; exists {
		return errors.New(errors.ErrCodeInvalidInput, "template %s is already registered", spec.Type)
	}
	r.specs[spec.Type] = spec
	return nil
}

// Lookup returns the spec for a component type.
// Returns a TEMPLATE_NOT_FOUND error for unknown types; callers that want
// the fallback policy use [Registry.Resolve] instead.
func (r *Registry) Lookup(componentType string) (*Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[componentType]
	if !ok {
		return nil, errors.New(errors.ErrCodeTemplateNotFound, "no template registered for component type %q", componentType)
	}
	return spec, nil
}

// Resolve returns the spec for a component type, falling back to the
// generic passthrough template for unknown types. The second return value
// reports whether the fallback was used, so callers can record an
// UNSUPPORTED_COMPONENT diagnostic. A node is never silently dropped.
func (r *Registry) Resolve(componentType string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if spec, ok := r.specs[componentType]; ok {
		return spec, false
	}
	return fallbackSpec, true
}

// Render renders a node to its XML fragment.
// Returns a MISSING_PARAMETER error naming the node and the first absent
// required config keys when the node's config does not satisfy the spec.
// Rendering is idempotent: identical inputs produce byte-identical output.
func (r *Registry) Render(node flow.Node, bounds geom.Bounds, incoming, outgoing []string) (string, error) {
	spec, _ := r.Resolve(node.Type)
	if missing := spec.MissingKeys(node.Config); len(missing) > 0 {
		return "", errors.New(errors.ErrCodeMissingParameter,
			"node %s: component type %s requires config keys %v", node.ID, spec.Type, missing)
	}
	return spec.Render(RenderContext{
		Node:     node,
		Bounds:   bounds,
		Incoming: incoming,
		Outgoing: outgoing,
	}), nil
}

// Types returns all registered component type tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.specs))
	for t := range r.specs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Specs returns all registered specs sorted by type tag, for catalog
// listings.
func (r *Registry) Specs() []*Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]*Spec, 0, len(r.specs))
	for _, s := range r.specs {
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Type < specs[j].Type })
	return specs
}

// Dimension returns the shape dimension for a category and whether the
// category is known.
func (r *Registry) Dimension(category string) (geom.Dimension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dimension(category)
}

// Dimensions returns a copy of the category dimension table.
func (r *Registry) Dimensions() map[string]geom.Dimension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]geom.Dimension, len(r.dims))
	for k, v := range r.dims {
		out[k] = v
	}
	return out
}

func (r *Registry) dimension(category string) (geom.Dimension, bool) {
	d, ok := r.dims[category]
	return d, ok
}
