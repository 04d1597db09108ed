// Package assemble turns an abstract pipeline graph into a deployable
// integration flow archive.
//
// # Architecture
//
// Assembly runs in four stages:
//
//  1. Validate: structural checks on the graph (start/end contract,
//     connectivity, acyclic sequence flow, template slot arities).
//  2. Layout: deterministic two-dimensional geometry via pkg/layout.
//  3. Render: every node through its registered template, edges to flow
//     elements, assembled into one process definition document. Rendered
//     flow references are re-checked for referential closure.
//  4. Package: manifest, collected parameters, and the document zipped
//     into an archive with zeroed timestamps.
//
// The whole pipeline is a pure function of (graph, options): identical
// inputs yield byte-identical archives. [Assemble] runs it directly;
// [Runner] adds content-addressed caching in front of the layout and
// render stages.
//
// # Error taxonomy
//
// User input problems (malformed graphs, missing template parameters)
// return GRAPH_STRUCTURE or MISSING_PARAMETER errors that name the
// offending node or edge. Unknown component types are not errors: they
// render through a passthrough template and surface as
// UNSUPPORTED_COMPONENT diagnostics. LAYOUT_OVERLAP and
// REFERENTIAL_INTEGRITY are internal invariant violations and always
// indicate an engine or template defect.
package assemble
