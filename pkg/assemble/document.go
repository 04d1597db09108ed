package assemble

import (
	"sort"
	"strings"

	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/layout"
	"github.com/flowsmith/flowsmith/pkg/template"
)

const documentHeader = `<?xml version="1.0" encoding="UTF-8"?>
<bpmn2:definitions xmlns:bpmn2="http://www.omg.org/spec/BPMN/20100524/MODEL" xmlns:bpmndi="http://www.omg.org/spec/BPMN/20100524/DI" xmlns:dc="http://www.omg.org/spec/DD/20100524/DC" xmlns:di="http://www.omg.org/spec/DD/20100524/DI" xmlns:ifl="http:///com.sap.ifl.model/Ifl.xsd" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" id="Definitions_1">
`

// BuildDocument renders every node and edge and assembles the complete
// process definition. The document has three sections: a collaboration
// holding participants and message flows, the process holding flow
// elements (in column order, insertion order within a column) followed by
// sequence flows (in input edge order), and the diagram section holding
// one shape per node and one waypoint polyline per edge.
//
// After rendering, the document's flow references are checked for
// referential closure; a violation is an internal REFERENTIAL_INTEGRITY
// error, not a user input error.
func BuildDocument(g *flow.Graph, reg *template.Registry, lay *layout.Layout, flowName string) ([]byte, error) {
	participants, elements, err := renderNodes(g, reg, lay)
	if err != nil {
		return nil, err
	}

	var messageFlows, sequenceFlows []string
	for _, e := range g.Edges() {
		if e.IsMessage() {
			messageFlows = append(messageFlows, template.MessageFlowXML(e))
			continue
		}
		sequenceFlows = append(sequenceFlows, template.SequenceFlowXML(e))
	}

	if err := verifyClosure(g, elements); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(documentHeader)

	b.WriteString("    <bpmn2:collaboration id=\"Collaboration_1\" name=\"" +
		template.EscapeAttr(flowName) + "\">\n")
	for _, p := range participants {
		b.WriteString(p)
	}
	for _, m := range messageFlows {
		b.WriteString(m)
	}
	b.WriteString("    </bpmn2:collaboration>\n")

	b.WriteString("    <bpmn2:process id=\"Process_1\" name=\"" +
		template.EscapeAttr(flowName) + "\">\n")
	for _, e := range elements {
		b.WriteString(e)
	}
	for _, s := range sequenceFlows {
		b.WriteString(s)
	}
	b.WriteString("    </bpmn2:process>\n")

	b.WriteString("    <bpmndi:BPMNDiagram id=\"BPMNDiagram_1\" name=\"" +
		template.EscapeAttr(flowName) + " Diagram\">\n")
	b.WriteString("        <bpmndi:BPMNPlane bpmnElement=\"Collaboration_1\" id=\"BPMNPlane_1\">\n")
	for _, id := range nodeRenderOrder(g, lay) {
		b.WriteString(template.ShapeXML(id, lay.Bounds[id]))
	}
	for _, e := range g.Edges() {
		b.WriteString(template.EdgeShapeXML(e.ID, lay.Waypoints[e.ID]))
	}
	b.WriteString("        </bpmndi:BPMNPlane>\n")
	b.WriteString("    </bpmndi:BPMNDiagram>\n")

	b.WriteString("</bpmn2:definitions>\n")
	return []byte(b.String()), nil
}

// renderNodes renders every node fragment in layout order, splitting
// collaboration participants from process elements.
func renderNodes(g *flow.Graph, reg *template.Registry, lay *layout.Layout) (participants, elements []string, err error) {
	for _, id := range nodeRenderOrder(g, lay) {
		n, _ := g.Node(id)
		spec, _ := reg.Resolve(n.Type)

		incoming := edgeIDs(g.IncomingSequence(id))
		outgoing := edgeIDs(g.OutgoingSequence(id))

		fragment, err := reg.Render(n, lay.Bounds[id], incoming, outgoing)
		if err != nil {
			return nil, nil, err
		}
		if spec.Category == template.CategoryParticipant {
			participants = append(participants, fragment)
			continue
		}
		elements = append(elements, fragment)
	}
	return participants, elements, nil
}

// nodeRenderOrder sorts node ids by column, breaking ties by insertion
// order. This keeps the document stable for identical input regardless of
// map iteration order.
func nodeRenderOrder(g *flow.Graph, lay *layout.Layout) []string {
	nodes := g.Nodes()
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return lay.Columns[ids[i]] < lay.Columns[ids[j]]
	})
	return ids
}

func edgeIDs(edges []flow.Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}
