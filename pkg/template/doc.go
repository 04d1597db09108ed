// Package template provides the component template registry: the mapping
// from component type tags to parameterized XML rendering contracts.
//
// # Overview
//
// Every pipeline node carries a component type tag. The registry declares,
// per type, a [Spec]: the config keys the type requires, the category its
// shape dimension comes from, the incoming/outgoing flow-slot arities it
// exposes, and the render function that interpolates config values, the
// computed position, and flow identifiers into a fixed XML skeleton.
//
// # Lookup and Fallback
//
//	reg := template.Default()
//	spec, err := reg.Lookup("httpCall")        // strict: TEMPLATE_NOT_FOUND
//	spec, fb := reg.Resolve("vendorSpecific")  // lenient: falls back
//
// Unknown component types are never dropped: [Registry.Resolve] substitutes
// a generic passthrough template that preserves the node's identity and
// slot wiring, so the assembled flow graph stays connected. Callers record
// an UNSUPPORTED_COMPONENT diagnostic when the fallback fires.
//
// # Purity
//
// Render functions are pure: the same (node, bounds, flow ids) input
// produces byte-identical output. Config properties are emitted in sorted
// key order, and there are no counters or timestamps inside fragments.
// This is what makes whole-package assembly reproducible.
package template
