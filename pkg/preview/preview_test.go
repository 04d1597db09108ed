package preview

import (
	"strings"
	"testing"

	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/template"
)

func sampleGraph(t *testing.T) *flow.Graph {
	t.Helper()
	g := flow.New()
	nodes := []flow.Node{
		{ID: "start", Type: template.TypeStartEvent},
		{ID: "route", Type: template.TypeExclusiveGateway},
		{ID: "mod", Type: template.TypeContentModifier, Lane: 1,
			Config: flow.Config{"header": "X-Trace"}},
		{ID: "end", Type: template.TypeEndEvent},
		{ID: "ext", Type: template.TypeParticipant},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	edges := []flow.Edge{
		{ID: "f1", SourceRef: "start", TargetRef: "route"},
		{ID: "f2", SourceRef: "route", TargetRef: "mod", Label: "match"},
		{ID: "f3", SourceRef: "route", TargetRef: "end"},
		{ID: "f4", SourceRef: "mod", TargetRef: "end"},
		{ID: "m1", Kind: flow.EdgeKindMessage, SourceRef: "mod", TargetRef: "ext"},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleGraph(t), template.Default(), Options{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Fatalf("missing digraph header:\n%s", dot)
	}
	for _, want := range []string{
		`"start" -> "route";`,
		`"route" -> "mod" [label="match"];`,
		`"mod" -> "ext" [style=dashed];`,
		"shape=circle",
		"shape=diamond",
		"shape=component",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleGraph(t), template.Default(), Options{Detailed: true})

	for _, want := range []string{"lane: 1", "header: X-Trace"} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed DOT missing %q", want)
		}
	}
}

func TestToDOTUnknownType(t *testing.T) {
	g := flow.New()
	if err := g.AddNode(flow.Node{ID: "mystery", Type: "unregistered"}); err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g, template.Default(), Options{})
	if !strings.Contains(dot, "dashed") {
		t.Errorf("fallback nodes should render dashed:\n%s", dot)
	}
}
