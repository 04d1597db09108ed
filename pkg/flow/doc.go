// Package flow provides the abstract pipeline graph consumed by the
// flowsmith assembly engine.
//
// # Overview
//
// An integration pipeline is described platform-neutrally as a directed
// graph: nodes are typed processing steps (events, activities, gateways,
// participants) and edges connect them. Upstream collaborators - vendor
// format parsers, graph builders - construct a [Graph] and hand it to the
// engine; the graph is immutable from the engine's point of view.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [Graph.AddNode], and edges
// with [Graph.AddEdge]. Nodes and edges must have unique IDs, and edges can
// only connect existing nodes:
//
//	g := flow.New()
//	g.AddNode(flow.Node{ID: "start", Type: "startEvent"})
//	g.AddNode(flow.Node{ID: "call", Type: "httpCall", Config: flow.Config{"address": "https://api"}})
//	g.AddEdge(flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "call"})
//
// # Edge Kinds
//
// Two edge kinds exist:
//
//   - [EdgeKindSequence]: step-to-step control flow executed in order.
//     Sequence edges drive column assignment during layout and must form
//     a DAG ([Graph.CheckAcyclic]).
//   - [EdgeKindMessage]: side-channel calls to external participants.
//     Message edges are exempt from the acyclicity check and do not affect
//     step ordering.
//
// # Ordering
//
// Node and edge iteration order is insertion order everywhere. This is a
// deliberate invariant: branch edges bind to gateway slots in input order,
// and the assembled document is byte-identical across repeated runs.
//
// # Concurrency
//
// Graph instances are not safe for concurrent mutation. The assembly engine
// never mutates a graph, so a fully-built graph may be shared by concurrent
// assemble calls.
package flow
