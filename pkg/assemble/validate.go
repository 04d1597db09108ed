package assemble

import (
	"fmt"
	"strings"

	"github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/template"
)

// Validate runs the structural checks that must hold before layout:
//
//   - the graph is non-empty
//   - node and edge ids are safe identifiers and no edge reuses a node id
//   - participants carry message edges only, and every message edge
//     connects exactly one participant to one process node
//   - sequence flows are acyclic
//   - exactly one process node has no incoming sequence flow (the start)
//   - at least one process node has no outgoing sequence flow (an end)
//   - every node is reachable from the start ignoring edge direction
//   - every node's sequence edge counts satisfy its template's slot arities
//
// Violations return a GRAPH_STRUCTURE error naming the offending nodes or
// edges; malformed identifiers return INVALID_INPUT. Unknown component
// types are not violations: they resolve to the passthrough template and
// are reported as UNSUPPORTED_COMPONENT diagnostics in the returned slice.
func Validate(g *flow.Graph, reg *template.Registry) ([]Diagnostic, error) {
	if g.NodeCount() == 0 {
		return nil, errors.New(errors.ErrCodeGraphStructure, "graph has no nodes")
	}
	if err := validateIdentifiers(g); err != nil {
		return nil, err
	}

	var warnings []Diagnostic
	specs := make(map[string]*template.Spec, g.NodeCount())
	for _, n := range g.Nodes() {
		spec, fallback := reg.Resolve(n.Type)
		specs[n.ID] = spec
		if fallback {
			warnings = append(warnings, Diagnostic{
				Code:    errors.ErrCodeUnsupportedComponent,
				NodeID:  n.ID,
				Message: fmt.Sprintf("unknown component type %q rendered with the passthrough template", n.Type),
			})
		}
	}
	isParticipant := func(id string) bool {
		return specs[id].Category == template.CategoryParticipant
	}

	if err := validateMessageEdges(g, isParticipant); err != nil {
		return nil, err
	}
	if err := g.CheckAcyclic(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGraphStructure, err, "sequence flow must be acyclic")
	}
	start, err := validateEndpoints(g, isParticipant)
	if err != nil {
		return nil, err
	}
	if !g.ConnectedFrom(start) {
		return nil, errors.New(errors.ErrCodeGraphStructure,
			"graph is not connected: some nodes are unreachable from %s", start)
	}
	if err := validateSlots(g, specs, isParticipant); err != nil {
		return nil, err
	}

	return warnings, nil
}

// validateIdentifiers checks every node and edge id for XML safety and
// rejects edges that reuse a node id. Node ids and edge ids land in a
// single id attribute namespace in the rendered document, so they must
// be disjoint.
func validateIdentifiers(g *flow.Graph) error {
	for _, n := range g.Nodes() {
		if err := errors.ValidateElementID(n.ID); err != nil {
			return err
		}
	}
	for _, e := range g.Edges() {
		if err := errors.ValidateElementID(e.ID); err != nil {
			return err
		}
		if _, taken := g.Node(e.ID); taken {
			return errors.New(errors.ErrCodeGraphStructure,
				"edge %s reuses a node id; element ids must be unique across the document", e.ID)
		}
	}
	return nil
}

// validateMessageEdges checks that message edges connect exactly one
// participant to one process node and that participants have no sequence
// edges.
func validateMessageEdges(g *flow.Graph, isParticipant func(string) bool) error {
	for _, e := range g.Edges() {
		srcPart, dstPart := isParticipant(e.SourceRef), isParticipant(e.TargetRef)
		if e.IsMessage() {
			if srcPart == dstPart {
				return errors.New(errors.ErrCodeGraphStructure,
					"message flow %s must connect one participant to one process node", e.ID)
			}
			continue
		}
		if srcPart || dstPart {
			return errors.New(errors.ErrCodeGraphStructure,
				"sequence flow %s attaches to a participant; participants take message flows only", e.ID)
		}
	}
	return nil
}

// validateEndpoints checks the start and end contract and returns the
// start node id.
func validateEndpoints(g *flow.Graph, isParticipant func(string) bool) (string, error) {
	var starts, ends []string
	for _, n := range g.SequenceSources() {
		if !isParticipant(n.ID) {
			starts = append(starts, n.ID)
		}
	}
	for _, n := range g.SequenceSinks() {
		if !isParticipant(n.ID) {
			ends = append(ends, n.ID)
		}
	}
	switch {
	case len(starts) == 0:
		return "", errors.New(errors.ErrCodeGraphStructure, "graph has no start node")
	case len(starts) > 1:
		return "", errors.New(errors.ErrCodeGraphStructure,
			"graph has multiple start nodes: %s", strings.Join(starts, ", "))
	case len(ends) == 0:
		return "", errors.New(errors.ErrCodeGraphStructure, "graph has no end node")
	}
	return starts[0], nil
}

// validateSlots checks each process node's sequence edge counts against
// its template's declared slot arities.
func validateSlots(g *flow.Graph, specs map[string]*template.Spec, isParticipant func(string) bool) error {
	for _, n := range g.Nodes() {
		if isParticipant(n.ID) {
			continue
		}
		spec := specs[n.ID]
		if in := len(g.IncomingSequence(n.ID)); !spec.Incoming.Satisfies(in) {
			return errors.New(errors.ErrCodeGraphStructure,
				"node %s: %s takes %s incoming flows, got %d",
				n.ID, spec.Type, slotRange(spec.Incoming), in)
		}
		if out := len(g.OutgoingSequence(n.ID)); !spec.Outgoing.Satisfies(out) {
			return errors.New(errors.ErrCodeGraphStructure,
				"node %s: %s takes %s outgoing flows, got %d",
				n.ID, spec.Type, slotRange(spec.Outgoing), out)
		}
	}
	return nil
}

func slotRange(s template.Slots) string {
	switch {
	case s.Max < 0:
		return fmt.Sprintf("at least %d", s.Min)
	case s.Min == s.Max:
		return fmt.Sprintf("exactly %d", s.Min)
	default:
		return fmt.Sprintf("%d to %d", s.Min, s.Max)
	}
}
