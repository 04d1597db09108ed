package flow

import (
	"errors"
	"testing"
)

func buildLinear(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, n := range []Node{
		{ID: "start", Type: "startEvent"},
		{ID: "call", Type: "httpCall"},
		{ID: "end", Type: "endEvent"},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	for _, e := range []Edge{
		{ID: "f1", SourceRef: "start", TargetRef: "call"},
		{ID: "f2", SourceRef: "call", TargetRef: "end"},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s): %v", e.ID, err)
		}
	}
	return g
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		wantErr error
	}{
		{name: "Valid", node: Node{ID: "a", Type: "httpCall"}},
		{name: "EmptyID", node: Node{Type: "httpCall"}, wantErr: ErrInvalidNodeID},
		{name: "Duplicate", node: Node{ID: "dup", Type: "httpCall"}, wantErr: ErrDuplicateNodeID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			if err := g.AddNode(Node{ID: "dup", Type: "mapper"}); err != nil {
				t.Fatalf("seed node: %v", err)
			}
			err := g.AddNode(tt.node)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddNode = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddNodeCopiesConfig(t *testing.T) {
	cfg := Config{"address": "https://api"}
	g := New()
	if err := g.AddNode(Node{ID: "a", Type: "httpCall", Config: cfg}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	cfg["address"] = "mutated"

	n, _ := g.Node("a")
	if got := n.Config["address"]; got != "https://api" {
		t.Errorf("config leaked caller mutation: %q", got)
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{name: "Valid", edge: Edge{ID: "e1", SourceRef: "a", TargetRef: "b"}},
		{name: "EmptyID", edge: Edge{SourceRef: "a", TargetRef: "b"}, wantErr: ErrInvalidEdgeID},
		{name: "UnknownSource", edge: Edge{ID: "e1", SourceRef: "missing", TargetRef: "b"}, wantErr: ErrUnknownSourceNode},
		{name: "UnknownTarget", edge: Edge{ID: "e1", SourceRef: "a", TargetRef: "missing"}, wantErr: ErrUnknownTargetNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			g.AddNode(Node{ID: "a", Type: "startEvent"})
			g.AddNode(Node{ID: "b", Type: "endEvent"})
			err := g.AddEdge(tt.edge)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddEdgeDuplicateID(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a", Type: "startEvent"})
	g.AddNode(Node{ID: "b", Type: "endEvent"})
	if err := g.AddEdge(Edge{ID: "e1", SourceRef: "a", TargetRef: "b"}); err != nil {
		t.Fatalf("first AddEdge: %v", err)
	}
	if err := g.AddEdge(Edge{ID: "e1", SourceRef: "b", TargetRef: "a"}); !errors.Is(err, ErrDuplicateEdgeID) {
		t.Errorf("AddEdge = %v, want ErrDuplicateEdgeID", err)
	}
}

func TestEdgeKindDefaultsToSequence(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a", Type: "startEvent"})
	g.AddNode(Node{ID: "b", Type: "endEvent"})
	g.AddEdge(Edge{ID: "e1", SourceRef: "a", TargetRef: "b"})

	e, ok := g.Edge("e1")
	if !ok {
		t.Fatal("edge not found")
	}
	if e.Kind != EdgeKindSequence {
		t.Errorf("Kind = %q, want sequence", e.Kind)
	}
}

func TestCheckAcyclic(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Graph
		wantErr error
	}{
		{
			name:  "Linear",
			build: func() *Graph { return buildLinear(t) },
		},
		{
			name: "TwoNodeCycle",
			build: func() *Graph {
				g := New()
				g.AddNode(Node{ID: "a", Type: "mapper"})
				g.AddNode(Node{ID: "b", Type: "mapper"})
				g.AddEdge(Edge{ID: "e1", SourceRef: "a", TargetRef: "b"})
				g.AddEdge(Edge{ID: "e2", SourceRef: "b", TargetRef: "a"})
				return g
			},
			wantErr: ErrSequenceCycle,
		},
		{
			name: "MessageBackEdgeExempt",
			build: func() *Graph {
				g := buildLinear(t)
				g.AddNode(Node{ID: "ext", Type: "participant"})
				g.AddEdge(Edge{ID: "m1", Kind: EdgeKindMessage, SourceRef: "call", TargetRef: "ext"})
				g.AddEdge(Edge{ID: "m2", Kind: EdgeKindMessage, SourceRef: "ext", TargetRef: "start"})
				return g
			},
		},
		{
			name: "SelfLoop",
			build: func() *Graph {
				g := New()
				g.AddNode(Node{ID: "a", Type: "mapper"})
				g.AddEdge(Edge{ID: "e1", SourceRef: "a", TargetRef: "a"})
				return g
			},
			wantErr: ErrSequenceCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.build().CheckAcyclic(); !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckAcyclic = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSequenceSourcesAndSinks(t *testing.T) {
	g := buildLinear(t)
	g.AddNode(Node{ID: "ext", Type: "participant"})
	g.AddEdge(Edge{ID: "m1", Kind: EdgeKindMessage, SourceRef: "call", TargetRef: "ext"})

	sources := g.SequenceSources()
	// "ext" has no sequence edges at all, so it counts as both.
	if len(sources) != 2 || sources[0].ID != "start" || sources[1].ID != "ext" {
		t.Errorf("SequenceSources = %v", nodeIDs(sources))
	}

	sinks := g.SequenceSinks()
	if len(sinks) != 2 || sinks[0].ID != "end" || sinks[1].ID != "ext" {
		t.Errorf("SequenceSinks = %v", nodeIDs(sinks))
	}
}

func TestOutgoingSequenceOrder(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "gw", Type: "exclusiveGateway"})
	g.AddNode(Node{ID: "a", Type: "endEvent"})
	g.AddNode(Node{ID: "b", Type: "endEvent"})
	g.AddEdge(Edge{ID: "branchB", SourceRef: "gw", TargetRef: "b", Label: "else"})
	g.AddEdge(Edge{ID: "branchA", SourceRef: "gw", TargetRef: "a", Label: "match"})

	out := g.OutgoingSequence("gw")
	if len(out) != 2 || out[0].ID != "branchB" || out[1].ID != "branchA" {
		t.Errorf("outgoing order not insertion order: %v", edgeIDs(out))
	}
}

func TestConnectedFrom(t *testing.T) {
	g := buildLinear(t)
	if !g.ConnectedFrom("start") {
		t.Error("linear graph should be connected from start")
	}

	g.AddNode(Node{ID: "island", Type: "mapper"})
	if g.ConnectedFrom("start") {
		t.Error("graph with isolated node should not be connected")
	}
}

func TestClone(t *testing.T) {
	g := buildLinear(t)
	c := g.Clone()

	if c.NodeCount() != g.NodeCount() || c.EdgeCount() != g.EdgeCount() {
		t.Fatalf("clone size mismatch: %d/%d vs %d/%d",
			c.NodeCount(), c.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}

	// Mutating the clone must not affect the original.
	c.AddNode(Node{ID: "extra", Type: "mapper"})
	if g.NodeCount() == c.NodeCount() {
		t.Error("clone shares node storage with original")
	}
}

func nodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func edgeIDs(edges []Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}
