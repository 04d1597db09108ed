package template

import (
	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/geom"
)

// Component categories. A category determines the default shape dimension
// used by the layout manager; it is intrinsic to the category, not to an
// individual node.
const (
	CategoryEvent       = "event"
	CategoryActivity    = "activity"
	CategoryGateway     = "gateway"
	CategoryParticipant = "participant"
)

// DefaultDimensions returns the built-in shape dimension per category.
// The layout config may override these per category.
func DefaultDimensions() map[string]geom.Dimension {
	return map[string]geom.Dimension{
		CategoryEvent:       {Width: 32, Height: 32},
		CategoryActivity:    {Width: 100, Height: 60},
		CategoryGateway:     {Width: 40, Height: 40},
		CategoryParticipant: {Width: 100, Height: 140},
	}
}

// Slots declares the arity contract of a flow-reference attachment side.
// Max < 0 means unbounded: the template exposes one slot per matching edge
// (e.g., a gateway grows an outgoing slot for every branch edge).
type Slots struct {
	Min int
	Max int
}

// Satisfies reports whether n edges satisfy the arity contract.
func (s Slots) Satisfies(n int) bool {
	if n < s.Min {
		return false
	}
	return s.Max < 0 || n <= s.Max
}

// RenderContext carries everything a template render function may consume.
// Rendering is a pure function of this context: the same context produces
// byte-identical output, with no hidden counters or timestamps.
type RenderContext struct {
	Node     flow.Node
	Bounds   geom.Bounds // Computed position + category dimension
	Incoming []string    // Flow ids bound to incoming slots, in input edge order
	Outgoing []string    // Flow ids bound to outgoing slots, in input edge order
}

// RenderFunc produces the XML fragment for one node.
type RenderFunc func(ctx RenderContext) string

// Spec declares the rendering contract of one component type: the config
// keys it requires, the category its dimension comes from, the slot arities
// it exposes, and the function that renders it.
type Spec struct {
	Type        string   // Component type tag (registry key)
	Category    string   // Dimension category
	Description string   // One-line description for the template catalog
	Required    []string // Config keys that must be present to render
	Incoming    Slots    // Incoming sequence-flow slot arity
	Outgoing    Slots    // Outgoing sequence-flow slot arity
	Render      RenderFunc
}

// MissingKeys returns the required config keys absent from cfg, in the
// order they are declared by the spec.
func (s *Spec) MissingKeys(cfg flow.Config) []string {
	var missing []string
	for _, key := range s.Required {
		if _, ok := cfg[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
