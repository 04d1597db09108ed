package layout

import (
	"sort"

	"github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/flow"
	"github.com/flowsmith/flowsmith/pkg/geom"
	"github.com/flowsmith/flowsmith/pkg/template"
)

// Layout is the computed geometry for one pipeline graph: a top-left
// position and bounding box per node, a waypoint polyline per edge, and
// the column assignment that drove placement. Positions are ephemeral -
// they are recomputed on every assembly run and never persisted apart
// from the document they were rendered into.
type Layout struct {
	Positions map[string]geom.Point   `json:"positions"`
	Bounds    map[string]geom.Bounds  `json:"bounds"`
	Waypoints map[string][]geom.Point `json:"waypoints"`
	Columns   map[string]int          `json:"columns"`
	Width     float64                 `json:"width"`
	Height    float64                 `json:"height"`
}

// Compute assigns every node a position and every edge a waypoint
// polyline. categories maps node id to dimension category (from the
// template registry); cfg supplies the spacing constants and dimension
// overrides.
//
// The algorithm is a deterministic left-to-right lane layout:
//
//  1. Sequence edges must form a DAG rooted at a single start node;
//     a cycle is a GRAPH_STRUCTURE error.
//  2. Each node's column is its longest-path distance from the start
//     along sequence edges.
//  3. Nodes sharing a column stack into rows, bucketed by lane hint,
//     collisions resolved by insertion order.
//  4. External participants sit above (message sources) or below
//     (message targets) the lane band, aligned to the column of the
//     first node they exchange messages with.
//
// Compute is a pure function of (graph, categories, cfg): re-running it
// on unchanged input yields identical geometry. A bounding-box overlap in
// the result indicates an engine defect and is returned as a fatal
// LAYOUT_OVERLAP error.
func Compute(g *flow.Graph, categories map[string]string, cfg Config) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := g.CheckAcyclic(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGraphStructure, err, "sequence flow must be acyclic")
	}

	dims := cfg.EffectiveDimensions(template.DefaultDimensions())
	dimOf := func(id string) geom.Dimension {
		if d, ok := dims[categories[id]]; ok {
			return d
		}
		return dims[template.CategoryActivity]
	}
	isParticipant := func(id string) bool {
		return categories[id] == template.CategoryParticipant
	}

	start, err := startNode(g, isParticipant)
	if err != nil {
		return nil, err
	}

	columns := assignColumns(g, start)

	l := &Layout{
		Positions: make(map[string]geom.Point),
		Bounds:    make(map[string]geom.Bounds),
		Waypoints: make(map[string][]geom.Point),
		Columns:   columns,
	}

	// Lane band geometry. Participants that send messages sit in a band
	// above lane 0; participants that receive sit below the last lane.
	lanes, maxLane := laneBuckets(g, columns, isParticipant)
	senders, receivers := splitParticipants(g, isParticipant)

	topBand := 0.0
	if rows := bandRows(g, senders, columns); rows > 0 {
		topBand = float64(rows) * (dims[template.CategoryParticipant].Height + cfg.ParticipantGap)
	}
	laneTop := func(lane int) float64 {
		return cfg.MarginY + topBand + float64(lane)*cfg.LaneHeight
	}

	// Place lane nodes column by column.
	for key, bucket := range lanes {
		for row, id := range bucket {
			dim := dimOf(id)
			cell := geom.Point{
				X: cfg.MarginX + float64(key.column)*cfg.HSpacing,
				Y: laneTop(key.lane) + (cfg.LaneHeight-dim.Height)/2 + float64(row)*cfg.VSpacing,
			}
			l.Positions[id] = cell
			l.Bounds[id] = geom.Rect(cell, dim)
		}
	}

	// Place participants relative to their peer's column.
	bandBottom := laneTop(maxLane) + cfg.LaneHeight + cfg.ParticipantGap
	placeParticipants(l, g, senders, cfg, dimOf, columns, cfg.MarginY)
	placeParticipants(l, g, receivers, cfg, dimOf, columns, bandBottom)

	// Waypoints from the final bounds.
	for _, e := range g.Edges() {
		if isParticipant(e.SourceRef) || isParticipant(e.TargetRef) {
			l.Waypoints[e.ID] = messageWaypoints(
				l.Bounds[e.SourceRef], l.Bounds[e.TargetRef], isParticipant(e.SourceRef))
			continue
		}
		l.Waypoints[e.ID] = sequenceWaypoints(l.Bounds[e.SourceRef], l.Bounds[e.TargetRef])
	}

	l.Width, l.Height = extents(l, cfg)

	if a, b, overlap := findOverlap(l); overlap {
		return nil, errors.New(errors.ErrCodeLayoutOverlap,
			"bounding boxes of %s and %s overlap", a, b)
	}
	return l, nil
}

// startNode returns the single non-participant sequence source.
func startNode(g *flow.Graph, isParticipant func(string) bool) (string, error) {
	var starts []string
	for _, n := range g.SequenceSources() {
		if !isParticipant(n.ID) {
			starts = append(starts, n.ID)
		}
	}
	switch len(starts) {
	case 0:
		return "", errors.New(errors.ErrCodeGraphStructure, "graph has no start node")
	case 1:
		return starts[0], nil
	default:
		return "", errors.New(errors.ErrCodeGraphStructure,
			"graph has %d start candidates (%v), want exactly one", len(starts), starts)
	}
}

// assignColumns computes each node's longest-path distance from start
// along sequence edges. Nodes without a directed sequence path from the
// start (participants, by construction) keep column 0; participants are
// later aligned to their message peer's column instead.
func assignColumns(g *flow.Graph, start string) map[string]int {
	columns := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		columns[n.ID] = 0
	}

	// DFS longest path. The graph is acyclic along sequence edges
	// (checked by the caller), so each node settles in finite passes.
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		if depth > columns[id] {
			columns[id] = depth
		}
		for _, e := range g.OutgoingSequence(id) {
			if columns[e.TargetRef] < depth+1 {
				visit(e.TargetRef, depth+1)
			}
		}
	}
	visit(start, 0)
	return columns
}

// laneKey buckets nodes by (column, lane).
type laneKey struct {
	column int
	lane   int
}

// laneBuckets groups non-participant nodes into (column, lane) buckets in
// insertion order and returns the highest lane index in use.
func laneBuckets(g *flow.Graph, columns map[string]int, isParticipant func(string) bool) (map[laneKey][]string, int) {
	buckets := make(map[laneKey][]string)
	maxLane := 0
	for _, n := range g.Nodes() {
		if isParticipant(n.ID) {
			continue
		}
		key := laneKey{column: columns[n.ID], lane: n.Lane}
		buckets[key] = append(buckets[key], n.ID)
		if n.Lane > maxLane {
			maxLane = n.Lane
		}
	}
	return buckets, maxLane
}

// splitParticipants partitions participant nodes into message senders and
// receivers, each in insertion order. A participant that only receives
// messages goes below the lane band; everything else goes above.
func splitParticipants(g *flow.Graph, isParticipant func(string) bool) (senders, receivers []string) {
	for _, n := range g.Nodes() {
		if !isParticipant(n.ID) {
			continue
		}
		if len(g.Outgoing(n.ID)) > 0 {
			senders = append(senders, n.ID)
		} else {
			receivers = append(receivers, n.ID)
		}
	}
	return senders, receivers
}

// placeParticipants lays out one participant band at the given top edge.
// Each participant aligns to the column of the first node it exchanges
// messages with; several participants on the same column stack downward
// within the band, never sideways into a neighboring column.
func placeParticipants(l *Layout, g *flow.Graph, ids []string, cfg Config,
	dimOf func(string) geom.Dimension, columns map[string]int, top float64) {

	used := make(map[int]int) // column -> participants already placed there
	for _, id := range ids {
		col := peerColumn(g, id, columns)
		dim := dimOf(id)
		row := used[col]
		used[col]++

		pos := geom.Point{
			X: cfg.MarginX + float64(col)*cfg.HSpacing,
			Y: top + float64(row)*(dim.Height+cfg.ParticipantGap),
		}
		l.Positions[id] = pos
		l.Bounds[id] = geom.Rect(pos, dim)
	}
}

// bandRows returns how many participant rows the band needs: the largest
// number of participants sharing one peer column.
func bandRows(g *flow.Graph, ids []string, columns map[string]int) int {
	used := make(map[int]int)
	rows := 0
	for _, id := range ids {
		col := peerColumn(g, id, columns)
		used[col]++
		if used[col] > rows {
			rows = used[col]
		}
	}
	return rows
}

// peerColumn returns the column of the first node the participant
// exchanges messages with, or 0 when it has no message edges.
func peerColumn(g *flow.Graph, id string, columns map[string]int) int {
	for _, e := range g.MessageEdges(id) {
		peer := e.TargetRef
		if peer == id {
			peer = e.SourceRef
		}
		return columns[peer]
	}
	return 0
}

// sequenceWaypoints connects the source's right-center boundary point to
// the target's left-center boundary point. When the two shapes sit at
// different heights, the polyline bends at the vertical midline between
// them so it does not cross intervening shapes.
func sequenceWaypoints(src, dst geom.Bounds) []geom.Point {
	from := src.RightCenter()
	to := dst.LeftCenter()
	if from.Y == to.Y {
		return []geom.Point{from, to}
	}
	midX := (from.X + to.X) / 2
	return []geom.Point{
		from,
		{X: midX, Y: from.Y},
		{X: midX, Y: to.Y},
		to,
	}
}

// messageWaypoints connects a participant and a process node with a
// vertical segment. The segment runs through the process node's center
// x, clamped into the participant's horizontal span, so the polyline
// stays vertical even when the two shapes differ in width.
func messageWaypoints(src, dst geom.Bounds, srcIsParticipant bool) []geom.Point {
	node, part := dst, src
	if !srcIsParticipant {
		node, part = src, dst
	}
	x := node.X + node.Width/2
	if x < part.X {
		x = part.X
	}
	if x > part.X+part.Width {
		x = part.X + part.Width
	}
	if src.Y < dst.Y {
		return []geom.Point{
			{X: x, Y: src.Y + src.Height},
			{X: x, Y: dst.Y},
		}
	}
	return []geom.Point{
		{X: x, Y: src.Y},
		{X: x, Y: dst.Y + dst.Height},
	}
}

// extents computes the overall diagram size including margins.
func extents(l *Layout, cfg Config) (w, h float64) {
	for _, b := range l.Bounds {
		if right := b.X + b.Width; right > w {
			w = right
		}
		if bottom := b.Y + b.Height; bottom > h {
			h = bottom
		}
	}
	return w + cfg.MarginX, h + cfg.MarginY
}

// findOverlap scans all node pairs for intersecting bounding boxes.
// Iteration is over the sorted id list so the reported pair is stable.
func findOverlap(l *Layout) (string, string, bool) {
	ids := make([]string, 0, len(l.Bounds))
	for id := range l.Bounds {
		ids = append(ids, id)
	}
	// Insertion order is unavailable here; sort for a stable report.
	sort.Strings(ids)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if l.Bounds[ids[i]].Intersects(l.Bounds[ids[j]]) {
				return ids[i], ids[j], true
			}
		}
	}
	return "", "", false
}
