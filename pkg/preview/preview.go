package preview

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/template"
)

// Options configures preview rendering.
type Options struct {
	// Detailed includes lane numbers and config parameters in node labels.
	// When false, only the node id and type are shown.
	Detailed bool
}

// shape per dimension category; unknown categories fall back to box.
var categoryShapes = map[string]string{
	template.CategoryEvent:       "circle",
	template.CategoryActivity:    "box",
	template.CategoryGateway:     "diamond",
	template.CategoryParticipant: "component",
}

// ToDOT converts a pipeline graph to Graphviz DOT format for quick visual
// inspection. This previews the logical graph, not the assembled document:
// positions come from Graphviz, not from the layout manager. Message
// edges render dashed.
func ToDOT(g *flow.Graph, reg *template.Registry, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		spec, fallback := reg.Resolve(n.Type)
		attrs := fmtAttrs(n, spec, fallback, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.IsMessage() {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.SourceRef, e.TargetRef)
			continue
		}
		if e.Label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.SourceRef, e.TargetRef, e.Label)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.SourceRef, e.TargetRef)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n flow.Node, spec *template.Spec, fallback bool, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("shape=%s", categoryShapes[spec.Category]),
	}
	if fallback {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

func fmtLabel(n flow.Node, detailed bool) string {
	label := n.DisplayName() + "\n" + n.Type
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("lane: %d", n.Lane)}
	for _, k := range slices.Sorted(maps.Keys(n.Config)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, n.Config[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
