// Package layout computes deterministic two-dimensional geometry for
// pipeline graphs. Nodes are placed on a column grid derived from their
// longest-path distance from the start node, stacked into horizontal
// lanes; external participants occupy bands above and below the lanes.
// Edge waypoints are derived from the final node bounds.
package layout
