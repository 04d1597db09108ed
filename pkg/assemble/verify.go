package assemble

import (
	"strings"

	"github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/flow"
)

// verifyClosure checks referential integrity of the rendered fragments:
// every sequence flow id must appear exactly once as an outgoing
// reference and exactly once as an incoming reference across the element
// fragments, and every flow reference must name a rendered sequence flow.
//
// The check runs on the rendered text, not the graph, because custom
// templates control their own flow-reference output. Matching raw edge
// ids against rendered text is sound because identifier validation bans
// every character EscapeText would rewrite. A violation means a
// template dropped or duplicated a reference; it is reported as a fatal
// REFERENTIAL_INTEGRITY error since the input graph already passed
// structural validation.
func verifyClosure(g *flow.Graph, elements []string) error {
	flows := make(map[string]bool)
	for _, e := range g.Edges() {
		if e.IsSequence() {
			flows[e.ID] = true
		}
	}

	incoming := countRefs(elements, "incoming")
	outgoing := countRefs(elements, "outgoing")

	for ref := range incoming {
		if !flows[ref] {
			return errors.New(errors.ErrCodeReferentialIntegrity,
				"incoming reference %s does not name a rendered sequence flow", ref)
		}
	}
	for ref := range outgoing {
		if !flows[ref] {
			return errors.New(errors.ErrCodeReferentialIntegrity,
				"outgoing reference %s does not name a rendered sequence flow", ref)
		}
	}
	for _, e := range g.Edges() {
		if !e.IsSequence() {
			continue
		}
		if n := outgoing[e.ID]; n != 1 {
			return errors.New(errors.ErrCodeReferentialIntegrity,
				"sequence flow %s has %d outgoing references, want 1", e.ID, n)
		}
		if n := incoming[e.ID]; n != 1 {
			return errors.New(errors.ErrCodeReferentialIntegrity,
				"sequence flow %s has %d incoming references, want 1", e.ID, n)
		}
	}
	return nil
}

// countRefs counts the text content of every occurrence of the given tag
// across the fragments.
func countRefs(fragments []string, tag string) map[string]int {
	openTag := "<bpmn2:" + tag + ">"
	closeTag := "</bpmn2:" + tag + ">"
	counts := make(map[string]int)
	for _, f := range fragments {
		rest := f
		for {
			i := strings.Index(rest, openTag)
			if i < 0 {
				break
			}
			rest = rest[i+len(openTag):]
			j := strings.Index(rest, closeTag)
			if j < 0 {
				break
			}
			counts[rest[:j]]++
			rest = rest[j+len(closeTag):]
		}
	}
	return counts
}
