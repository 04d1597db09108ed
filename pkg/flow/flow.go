package flow

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidEdgeID is returned by [Graph.AddEdge] when the edge ID is empty.
	ErrInvalidEdgeID = errors.New("edge ID must not be empty")

	// ErrDuplicateEdgeID is returned by [Graph.AddEdge] when an edge with the
	// same ID already exists in the graph.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the SourceRef
	// node does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the TargetRef
	// node does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSequenceCycle is returned by [Graph.CheckAcyclic] when a cycle is
	// detected among sequence edges. The primary step ordering of a pipeline
	// is a DAG; message edges are exempt because they represent side-channel
	// calls, not step-to-step flow.
	ErrSequenceCycle = errors.New("cycle in sequence flow")
)

// EdgeKind distinguishes step-to-step control flow from side-channel calls
// to external participants.
type EdgeKind string

const (
	// EdgeKindSequence is a control-flow connection between two steps
	// executed in order. Sequence edges participate in column assignment
	// and the acyclicity check.
	EdgeKindSequence EdgeKind = "sequence"

	// EdgeKindMessage is a connection to or from an external participant.
	// Message edges are exempt from the acyclicity check and do not affect
	// column assignment.
	EdgeKindMessage EdgeKind = "message"
)

// Config holds a node's template parameters as string key-value pairs.
// Values are interpolated verbatim into the node's rendered XML fragment.
type Config map[string]string

// Clone returns a copy of the config. Returns nil for a nil config.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Node is one typed processing step of an integration pipeline.
// Nodes are immutable once passed to the engine.
//
// The zero value is not usable - ID and Type must be set before adding
// to a Graph.
type Node struct {
	ID     string // Unique identifier within a graph
	Type   string // Component type tag into the template registry
	Name   string // Display name shown in the rendered diagram
	Config Config // Template parameters, validated against the type's spec
	Lane   int    // Optional lane hint for vertical grouping (default 0)
}

// DisplayName returns the name if set, otherwise the ID.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Edge is a directed connection between two pipeline steps.
type Edge struct {
	ID        string   // Unique identifier within a graph
	Kind      EdgeKind // sequence or message
	SourceRef string   // Source node ID
	TargetRef string   // Target node ID
	Label     string   // Optional condition text for branch edges
}

// IsSequence reports whether the edge is part of the primary step ordering.
func (e Edge) IsSequence() bool { return e.Kind == EdgeKindSequence }

// IsMessage reports whether the edge is a side-channel call to a participant.
func (e Edge) IsMessage() bool { return e.Kind == EdgeKindMessage }

// Graph is the abstract, platform-neutral description of an integration
// pipeline: an ordered collection of typed nodes plus the edges connecting
// them. It is the unit of work consumed by the assembly engine.
//
// Node and edge order is insertion order and is preserved through layout and
// rendering, which keeps repeated assembly runs byte-identical.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent mutation without external synchronization;
// the engine itself never mutates a graph it is handed.
type Graph struct {
	nodes    map[string]*Node
	order    []string            // node IDs in insertion order
	edges    []Edge              // edges in insertion order
	edgeIDs  map[string]int      // edge ID -> index into edges
	outgoing map[string][]string // node ID -> outgoing edge IDs
	incoming map[string][]string // node ID -> incoming edge IDs
}

// New creates an empty pipeline graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edgeIDs:  make(map[string]int),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists. The node's Config is copied
// so later caller mutation cannot reach into the graph.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	n.Config = n.Config.Clone()
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrInvalidEdgeID or ErrDuplicateEdgeID for bad identifiers,
// ErrUnknownSourceNode if SourceRef doesn't exist, or ErrUnknownTargetNode
// if TargetRef doesn't exist. Edges default to EdgeKindSequence when Kind
// is unset.
func (g *Graph) AddEdge(e Edge) error {
	if e.ID == "" {
		return ErrInvalidEdgeID
	}
	if _, exists := g.edgeIDs[e.ID]; exists {
		return ErrDuplicateEdgeID
	}
	if _, ok := g.nodes[e.SourceRef]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.TargetRef]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Kind == "" {
		e.Kind = EdgeKindSequence
	}
	g.edgeIDs[e.ID] = len(g.edges)
	g.edges = append(g.edges, e)
	g.outgoing[e.SourceRef] = append(g.outgoing[e.SourceRef], e.ID)
	g.incoming[e.TargetRef] = append(g.incoming[e.TargetRef], e.ID)
	return nil
}

// Node returns the node with the given ID and true, or a zero node and
// false if not found. Nodes are returned by value; the graph's copy cannot
// be modified through the return.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = *g.nodes[id]
	}
	return nodes
}

// Edge returns the edge with the given ID and true, or a zero edge and
// false if not found.
func (g *Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIDs[id]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Outgoing returns the edges leaving the node, in insertion order.
func (g *Graph) Outgoing(id string) []Edge { return g.edgesByID(g.outgoing[id]) }

// Incoming returns the edges entering the node, in insertion order.
func (g *Graph) Incoming(id string) []Edge { return g.edgesByID(g.incoming[id]) }

// OutgoingSequence returns the sequence edges leaving the node, in
// insertion order. Branch slot assignment follows this order.
func (g *Graph) OutgoingSequence(id string) []Edge {
	return filterKind(g.edgesByID(g.outgoing[id]), EdgeKindSequence)
}

// IncomingSequence returns the sequence edges entering the node.
func (g *Graph) IncomingSequence(id string) []Edge {
	return filterKind(g.edgesByID(g.incoming[id]), EdgeKindSequence)
}

// MessageEdges returns all message edges touching the node, in insertion
// order (outgoing first, then incoming).
func (g *Graph) MessageEdges(id string) []Edge {
	out := filterKind(g.edgesByID(g.outgoing[id]), EdgeKindMessage)
	return append(out, filterKind(g.edgesByID(g.incoming[id]), EdgeKindMessage)...)
}

// SequenceSources returns nodes with no incoming sequence edges, in
// insertion order. A valid pipeline has exactly one that is not an
// external participant: the designated start node.
func (g *Graph) SequenceSources() []Node {
	var out []Node
	for _, id := range g.order {
		if len(filterKind(g.edgesByID(g.incoming[id]), EdgeKindSequence)) == 0 {
			out = append(out, *g.nodes[id])
		}
	}
	return out
}

// SequenceSinks returns nodes with no outgoing sequence edges, in
// insertion order. These are the pipeline's end nodes.
func (g *Graph) SequenceSinks() []Node {
	var out []Node
	for _, id := range g.order {
		if len(filterKind(g.edgesByID(g.outgoing[id]), EdgeKindSequence)) == 0 {
			out = append(out, *g.nodes[id])
		}
	}
	return out
}

// CheckAcyclic verifies that the sequence edges form a DAG.
// Message edges are ignored. Returns ErrSequenceCycle when a cycle exists.
//
// Detection runs in O(N+E) time using depth-first search with
// white/gray/black coloring.
func (g *Graph) CheckAcyclic() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, e := range g.OutgoingSequence(id) {
			switch color[e.TargetRef] {
			case white:
				dfs(e.TargetRef)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrSequenceCycle
			}
		}
	}
	return nil
}

// ConnectedFrom reports whether every node is reachable from start when
// edge direction is ignored (weak connectivity). Participants linked only
// by message edges count as connected.
func (g *Graph) ConnectedFrom(start string) bool {
	if _, ok := g.nodes[start]; !ok {
		return false
	}
	seen := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range g.edgesByID(g.outgoing[id]) {
			if !seen[e.TargetRef] {
				seen[e.TargetRef] = true
				queue = append(queue, e.TargetRef)
			}
		}
		for _, e := range g.edgesByID(g.incoming[id]) {
			if !seen[e.SourceRef] {
				seen[e.SourceRef] = true
				queue = append(queue, e.SourceRef)
			}
		}
	}
	return len(seen) == len(g.nodes)
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := New()
	for _, id := range g.order {
		_ = out.AddNode(*g.nodes[id])
	}
	for _, e := range g.edges {
		_ = out.AddEdge(e)
	}
	return out
}

func (g *Graph) edgesByID(ids []string) []Edge {
	edges := make([]Edge, 0, len(ids))
	for _, id := range ids {
		edges = append(edges, g.edges[g.edgeIDs[id]])
	}
	return edges
}

func filterKind(edges []Edge, kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
