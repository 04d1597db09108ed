// Package preview renders pipeline graphs as Graphviz diagrams for
// humans debugging a graph before assembly. The preview shows the
// logical structure only; the assembled document's geometry comes from
// the layout manager, not from Graphviz.
package preview
