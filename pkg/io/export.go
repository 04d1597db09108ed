package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/flowsmith/flowsmith/pkg/flow"
)

// document is the wire format shared by JSON and YAML.
type document struct {
	Nodes []node `json:"nodes" yaml:"nodes"`
	Edges []edge `json:"edges" yaml:"edges"`
}

type node struct {
	ID     string            `json:"id" yaml:"id"`
	Type   string            `json:"type" yaml:"type"`
	Name   string            `json:"name,omitempty" yaml:"name,omitempty"`
	Lane   *int              `json:"lane,omitempty" yaml:"lane,omitempty"`
	Config map[string]string `json:"config,omitempty" yaml:"config,omitempty"`
}

type edge struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// toDocument converts a graph into the wire format. Node and edge order
// follows the graph's insertion order.
func toDocument(g *flow.Graph) document {
	out := document{
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		nd := node{ID: n.ID, Type: n.Type, Name: n.Name, Config: n.Config}
		if n.Lane != 0 {
			lane := n.Lane
			nd.Lane = &lane
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		ed := edge{ID: e.ID, Source: e.SourceRef, Target: e.TargetRef, Label: e.Label}
		if e.Kind != flow.EdgeKindSequence {
			ed.Kind = string(e.Kind)
		}
		out.Edges = append(out.Edges, ed)
	}
	return out
}

// MarshalGraph encodes a graph to canonical JSON bytes. Node and edge
// order is the graph's insertion order and map keys are sorted by the
// encoder, so identical graphs always serialize identically. The result
// is suitable both for persistence and as cache key material.
func MarshalGraph(g *flow.Graph) ([]byte, error) {
	data, err := json.Marshal(toDocument(g))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// WriteJSON encodes a graph as indented JSON and writes it to w.
// The output round-trips through [ReadJSON].
func WriteJSON(g *flow.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *flow.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
