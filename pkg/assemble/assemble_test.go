package assemble

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/template"
)

func addNode(t *testing.T, g *flow.Graph, n flow.Node) {
	t.Helper()
	require.NoError(t, g.AddNode(n), "AddNode(%s)", n.ID)
}

func addEdge(t *testing.T, g *flow.Graph, e flow.Edge) {
	t.Helper()
	require.NoError(t, g.AddEdge(e), "AddEdge(%s)", e.ID)
}

// routedGraph builds start -> gateway -> {upper, lower} -> end with a
// receiving participant attached to upper.
func routedGraph(t *testing.T) *flow.Graph {
	t.Helper()
	g := flow.New()
	addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
	addNode(t, g, flow.Node{ID: "route", Type: template.TypeExclusiveGateway})
	addNode(t, g, flow.Node{ID: "upper", Type: template.TypeHTTPCall,
		Config: flow.Config{"address": "https://api.example.com", "method": "POST"}})
	addNode(t, g, flow.Node{ID: "lower", Type: template.TypeContentModifier, Lane: 1})
	addNode(t, g, flow.Node{ID: "end", Type: template.TypeEndEvent})
	addNode(t, g, flow.Node{ID: "backend", Type: template.TypeParticipant})

	addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "route"})
	addEdge(t, g, flow.Edge{ID: "f2", SourceRef: "route", TargetRef: "upper", Label: "priority"})
	addEdge(t, g, flow.Edge{ID: "f3", SourceRef: "route", TargetRef: "lower"})
	addEdge(t, g, flow.Edge{ID: "f4", SourceRef: "upper", TargetRef: "end"})
	addEdge(t, g, flow.Edge{ID: "f5", SourceRef: "lower", TargetRef: "end"})
	addEdge(t, g, flow.Edge{ID: "m1", Kind: flow.EdgeKindMessage, SourceRef: "upper", TargetRef: "backend"})
	return g
}

func TestAssemble(t *testing.T) {
	g := routedGraph(t)
	result, err := Assemble(context.Background(), g, Options{FlowName: "Orders"})
	require.NoError(t, err)
	require.NotNil(t, result)

	doc := string(result.Document)

	// Every node renders exactly once.
	for _, id := range []string{"start", "route", "upper", "lower", "end"} {
		assert.Equal(t, 1, strings.Count(doc, `id="`+id+`"`), "element %s", id)
	}

	// Sequence flows match input edges one to one.
	assert.Equal(t, 5, strings.Count(doc, "<bpmn2:sequenceFlow"), "sequence flow count")
	assert.Contains(t, doc, `<bpmn2:messageFlow id="m1"`)
	assert.Contains(t, doc, `<bpmn2:participant id="backend"`)

	// Edge label becomes a condition expression.
	assert.Contains(t, doc, "<bpmn2:conditionExpression")
	assert.Contains(t, doc, ">priority</bpmn2:conditionExpression>")

	// Diagram carries one shape per node and one edge per connection.
	assert.Equal(t, 6, strings.Count(doc, "<bpmndi:BPMNShape"), "shape count")
	assert.Equal(t, 6, strings.Count(doc, "<bpmndi:BPMNEdge"), "edge shape count")

	// Known types only, so no warnings.
	assert.Empty(t, result.Warnings)
	assert.Len(t, result.Entries, 3)
	assert.NotEmpty(t, result.GraphHash)
}

func TestAssembleDeterministic(t *testing.T) {
	opts := Options{FlowName: "Orders"}
	a, err := Assemble(context.Background(), routedGraph(t), opts)
	require.NoError(t, err)
	b, err := Assemble(context.Background(), routedGraph(t), Options{FlowName: "Orders"})
	require.NoError(t, err)

	assert.Equal(t, a.Document, b.Document, "documents differ between runs")
	assert.True(t, bytes.Equal(a.Archive, b.Archive), "archives differ between runs")
}

func TestAssembleUnknownTypeFallsBack(t *testing.T) {
	g := flow.New()
	addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
	addNode(t, g, flow.Node{ID: "custom", Type: "quantumRouter"})
	addNode(t, g, flow.Node{ID: "end", Type: template.TypeEndEvent})
	addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "custom"})
	addEdge(t, g, flow.Edge{ID: "f2", SourceRef: "custom", TargetRef: "end"})

	result, err := Assemble(context.Background(), g, Options{})
	require.NoError(t, err, "unknown types must not abort assembly")

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, errors.ErrCodeUnsupportedComponent, result.Warnings[0].Code)
	assert.Equal(t, "custom", result.Warnings[0].NodeID)
	assert.Contains(t, result.Warnings[0].Message, "quantumRouter")

	// The node stays in the document, still wired to its flows.
	doc := string(result.Document)
	assert.Contains(t, doc, `id="custom"`)
	assert.Contains(t, doc, "<bpmn2:incoming>f1</bpmn2:incoming>")
	assert.Contains(t, doc, "<bpmn2:outgoing>f2</bpmn2:outgoing>")
}

func TestAssembleMissingParameter(t *testing.T) {
	g := flow.New()
	addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
	addNode(t, g, flow.Node{ID: "call", Type: template.TypeHTTPCall,
		Config: flow.Config{"address": "https://api.example.com"}})
	addNode(t, g, flow.Node{ID: "end", Type: template.TypeEndEvent})
	addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "call"})
	addEdge(t, g, flow.Edge{ID: "f2", SourceRef: "call", TargetRef: "end"})

	_, err := Assemble(context.Background(), g, Options{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMissingParameter, errors.GetCode(err))
	assert.Contains(t, err.Error(), "call", "error must name the node")
	assert.Contains(t, err.Error(), "method", "error must name the missing key")
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *flow.Graph
		want  string
	}{
		{
			name:  "empty graph",
			build: func(t *testing.T) *flow.Graph { return flow.New() },
			want:  "no nodes",
		},
		{
			name: "cycle",
			build: func(t *testing.T) *flow.Graph {
				g := flow.New()
				addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
				addNode(t, g, flow.Node{ID: "a", Type: template.TypeContentModifier})
				addNode(t, g, flow.Node{ID: "b", Type: template.TypeScript, Config: flow.Config{"script": "x"}})
				addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "a"})
				addEdge(t, g, flow.Edge{ID: "f2", SourceRef: "a", TargetRef: "b"})
				addEdge(t, g, flow.Edge{ID: "f3", SourceRef: "b", TargetRef: "a"})
				return g
			},
			want: "acyclic",
		},
		{
			name: "multiple starts",
			build: func(t *testing.T) *flow.Graph {
				g := flow.New()
				addNode(t, g, flow.Node{ID: "s1", Type: template.TypeStartEvent})
				addNode(t, g, flow.Node{ID: "s2", Type: template.TypeStartEvent})
				addNode(t, g, flow.Node{ID: "join", Type: template.TypeJoinGateway})
				addNode(t, g, flow.Node{ID: "end", Type: template.TypeEndEvent})
				addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "s1", TargetRef: "join"})
				addEdge(t, g, flow.Edge{ID: "f2", SourceRef: "s2", TargetRef: "join"})
				addEdge(t, g, flow.Edge{ID: "f3", SourceRef: "join", TargetRef: "end"})
				return g
			},
			want: "multiple start nodes: s1, s2",
		},
		{
			name: "edge reuses node id",
			build: func(t *testing.T) *flow.Graph {
				g := flow.New()
				addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
				addNode(t, g, flow.Node{ID: "dup", Type: template.TypeContentModifier})
				addNode(t, g, flow.Node{ID: "end", Type: template.TypeEndEvent})
				addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "dup"})
				addEdge(t, g, flow.Edge{ID: "dup", SourceRef: "dup", TargetRef: "end"})
				return g
			},
			want: "ids must be unique",
		},
		{
			name: "sequence flow into participant",
			build: func(t *testing.T) *flow.Graph {
				g := flow.New()
				addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
				addNode(t, g, flow.Node{ID: "ext", Type: template.TypeParticipant})
				addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "ext"})
				return g
			},
			want: "message flows only",
		},
		{
			name: "message flow between process nodes",
			build: func(t *testing.T) *flow.Graph {
				g := flow.New()
				addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
				addNode(t, g, flow.Node{ID: "end", Type: template.TypeEndEvent})
				addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "end"})
				addEdge(t, g, flow.Edge{ID: "m1", Kind: flow.EdgeKindMessage, SourceRef: "start", TargetRef: "end"})
				return g
			},
			want: "message flow m1",
		},
		{
			name: "slot arity violation",
			build: func(t *testing.T) *flow.Graph {
				g := flow.New()
				addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
				addNode(t, g, flow.Node{ID: "a", Type: template.TypeContentModifier})
				addNode(t, g, flow.Node{ID: "b", Type: template.TypeEndEvent})
				addNode(t, g, flow.Node{ID: "c", Type: template.TypeEndEvent})
				addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "a"})
				addEdge(t, g, flow.Edge{ID: "f2", SourceRef: "a", TargetRef: "b"})
				addEdge(t, g, flow.Edge{ID: "f3", SourceRef: "a", TargetRef: "c"})
				return g
			},
			want: "node a",
		},
		{
			name: "disconnected node",
			build: func(t *testing.T) *flow.Graph {
				g := flow.New()
				addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
				addNode(t, g, flow.Node{ID: "end", Type: template.TypeEndEvent})
				addNode(t, g, flow.Node{ID: "island", Type: template.TypeParticipant})
				addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "end"})
				return g
			},
			want: "not connected",
		},
	}

	reg := template.Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.build(t), reg)
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeGraphStructure, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateRejectsUnsafeIDs(t *testing.T) {
	g := flow.New()
	addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
	addNode(t, g, flow.Node{ID: "end", Type: template.TypeEndEvent})
	addEdge(t, g, flow.Edge{ID: "a&b", SourceRef: "start", TargetRef: "end"})

	_, err := Validate(g, template.Default())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "a&b", "error must name the offending id")
}

func TestAssembleRejectsDuplicateElementID(t *testing.T) {
	g := flow.New()
	addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
	addNode(t, g, flow.Node{ID: "dup", Type: template.TypeContentModifier})
	addNode(t, g, flow.Node{ID: "end", Type: template.TypeEndEvent})
	addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "dup"})
	addEdge(t, g, flow.Edge{ID: "dup", SourceRef: "dup", TargetRef: "end"})

	_, err := Assemble(context.Background(), g, Options{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGraphStructure, errors.GetCode(err))
	assert.Contains(t, err.Error(), "dup")
}

func TestVerifyClosureCatchesBrokenTemplate(t *testing.T) {
	reg := template.Default()
	// A template that swallows its flow references.
	require.NoError(t, reg.Register(&template.Spec{
		Type:     "blackhole",
		Category: template.CategoryActivity,
		Incoming: template.Slots{Min: 1, Max: -1},
		Outgoing: template.Slots{Min: 1, Max: 1},
		Render: func(ctx template.RenderContext) string {
			return "        <bpmn2:callActivity id=\"" + ctx.Node.ID + "\" name=\"x\">\n" +
				"        </bpmn2:callActivity>\n"
		},
	}))

	g := flow.New()
	addNode(t, g, flow.Node{ID: "start", Type: template.TypeStartEvent})
	addNode(t, g, flow.Node{ID: "hole", Type: "blackhole"})
	addNode(t, g, flow.Node{ID: "end", Type: template.TypeEndEvent})
	addEdge(t, g, flow.Edge{ID: "f1", SourceRef: "start", TargetRef: "hole"})
	addEdge(t, g, flow.Edge{ID: "f2", SourceRef: "hole", TargetRef: "end"})

	_, err := Assemble(context.Background(), g, Options{Registry: reg})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeReferentialIntegrity, errors.GetCode(err))
	assert.True(t, errors.IsFatal(err), "referential integrity violations are fatal")
}

func TestBuildArchive(t *testing.T) {
	g := routedGraph(t)
	result, err := Assemble(context.Background(), g, Options{FlowName: "Orders"})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(result.Archive), int64(len(result.Archive)))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)

	// Entry order is fixed: manifest, parameters, document.
	assert.Equal(t, "META-INF/MANIFEST.MF", zr.File[0].Name)
	assert.Equal(t, "src/main/resources/parameters.prop", zr.File[1].Name)
	assert.Equal(t, "src/main/resources/scenarioflows/integrationflow/Orders.iflw", zr.File[2].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	var params bytes.Buffer
	_, err = params.ReadFrom(rc)
	require.NoError(t, err)
	assert.Contains(t, params.String(), "upper.address=https://api.example.com")
	assert.Contains(t, params.String(), "upper.method=POST")
}

func TestOptionsValidation(t *testing.T) {
	opts := Options{FlowName: "bad flow name"}
	err := opts.ValidateAndSetDefaults()
	require.Error(t, err)

	opts = Options{}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, DefaultFlowName, opts.FlowName)
	assert.NotNil(t, opts.Registry)
	assert.NotNil(t, opts.Logger)

	// Idempotent.
	require.NoError(t, opts.ValidateAndSetDefaults())
}
