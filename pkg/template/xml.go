package template

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/geom"
)

// Fragment indentation inside the process element. All templates emit
// fragments at this depth so concatenation produces a uniformly indented
// document.
const (
	indentElem  = "        "     // flow elements under bpmn2:process
	indentChild = indentElem + "    " // children of a flow element
	indentProp  = indentChild + "    " // ifl:property children
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\t", "&#9;",
	"\r", "&#13;",
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeAttr escapes a string for use inside a double-quoted XML attribute.
func EscapeAttr(s string) string { return attrEscaper.Replace(s) }

// EscapeText escapes a string for use as XML character data.
func EscapeText(s string) string { return textEscaper.Replace(s) }

// propertiesXML renders a node's config as an ifl extension-element block.
// Keys are emitted in sorted order so rendering stays deterministic
// regardless of map iteration order. Returns "" for an empty config.
func propertiesXML(cfg flow.Config) string {
	if len(cfg) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(indentChild + "<bpmn2:extensionElements>\n")
	for _, k := range keys {
		fmt.Fprintf(&b, indentProp+"<ifl:property>\n")
		fmt.Fprintf(&b, indentProp+"    <key>%s</key>\n", EscapeText(k))
		fmt.Fprintf(&b, indentProp+"    <value>%s</value>\n", EscapeText(cfg[k]))
		fmt.Fprintf(&b, indentProp+"</ifl:property>\n")
	}
	b.WriteString(indentChild + "</bpmn2:extensionElements>\n")
	return b.String()
}

// flowRefsXML renders incoming/outgoing flow references in slot order.
func flowRefsXML(incoming, outgoing []string) string {
	var b strings.Builder
	for _, id := range incoming {
		fmt.Fprintf(&b, indentChild+"<bpmn2:incoming>%s</bpmn2:incoming>\n", EscapeText(id))
	}
	for _, id := range outgoing {
		fmt.Fprintf(&b, indentChild+"<bpmn2:outgoing>%s</bpmn2:outgoing>\n", EscapeText(id))
	}
	return b.String()
}

// element renders one flow element with the standard children: extension
// properties first, then flow references. extra is inserted between the
// opening tag and the properties (e.g., event definitions).
func element(tag string, ctx RenderContext, attrs string, extra string) string {
	var b strings.Builder
	fmt.Fprintf(&b, indentElem+"<bpmn2:%s id=\"%s\" name=\"%s\"%s>\n",
		tag, EscapeAttr(ctx.Node.ID), EscapeAttr(ctx.Node.DisplayName()), attrs)
	b.WriteString(extra)
	b.WriteString(propertiesXML(ctx.Node.Config))
	b.WriteString(flowRefsXML(ctx.Incoming, ctx.Outgoing))
	fmt.Fprintf(&b, indentElem+"</bpmn2:%s>\n", tag)
	return b.String()
}

// SequenceFlowXML renders one sequence-flow element. An edge label becomes
// a condition expression on the flow.
func SequenceFlowXML(e flow.Edge) string {
	if e.Label == "" {
		return fmt.Sprintf(indentElem+"<bpmn2:sequenceFlow id=\"%s\" sourceRef=\"%s\" targetRef=\"%s\"/>\n",
			EscapeAttr(e.ID), EscapeAttr(e.SourceRef), EscapeAttr(e.TargetRef))
	}
	var b strings.Builder
	fmt.Fprintf(&b, indentElem+"<bpmn2:sequenceFlow id=\"%s\" name=\"%s\" sourceRef=\"%s\" targetRef=\"%s\">\n",
		EscapeAttr(e.ID), EscapeAttr(e.Label), EscapeAttr(e.SourceRef), EscapeAttr(e.TargetRef))
	fmt.Fprintf(&b, indentChild+"<bpmn2:conditionExpression xsi:type=\"bpmn2:tFormalExpression\">%s</bpmn2:conditionExpression>\n",
		EscapeText(e.Label))
	fmt.Fprintf(&b, indentElem+"</bpmn2:sequenceFlow>\n")
	return b.String()
}

// MessageFlowXML renders one message-flow element for the collaboration.
func MessageFlowXML(e flow.Edge) string {
	name := e.Label
	if name == "" {
		name = e.ID
	}
	return fmt.Sprintf("        <bpmn2:messageFlow id=\"%s\" name=\"%s\" sourceRef=\"%s\" targetRef=\"%s\"/>\n",
		EscapeAttr(e.ID), EscapeAttr(name), EscapeAttr(e.SourceRef), EscapeAttr(e.TargetRef))
}

// ShapeXML renders the diagram shape for one element.
func ShapeXML(elementID string, b geom.Bounds) string {
	return fmt.Sprintf(
		"            <bpmndi:BPMNShape bpmnElement=\"%s\" id=\"BPMNShape_%s\">\n"+
			"                <dc:Bounds height=\"%.1f\" width=\"%.1f\" x=\"%.1f\" y=\"%.1f\"/>\n"+
			"            </bpmndi:BPMNShape>\n",
		EscapeAttr(elementID), EscapeAttr(elementID), b.Height, b.Width, b.X, b.Y)
}

// EdgeShapeXML renders the diagram edge with its waypoint polyline.
func EdgeShapeXML(edgeID string, waypoints []geom.Point) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "            <bpmndi:BPMNEdge bpmnElement=\"%s\" id=\"BPMNEdge_%s\">\n",
		EscapeAttr(edgeID), EscapeAttr(edgeID))
	for _, p := range waypoints {
		fmt.Fprintf(&sb, "                <di:waypoint x=\"%.1f\" y=\"%.1f\"/>\n", p.X, p.Y)
	}
	sb.WriteString("            </bpmndi:BPMNEdge>\n")
	return sb.String()
}
