package assemble

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowsmith/flowsmith/pkg/cache"
	"github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/flow"
	flowio "github.com/flowsmith/flowsmith/pkg/io"
	"github.com/flowsmith/flowsmith/pkg/layout"
	"github.com/flowsmith/flowsmith/pkg/template"
)

// FormatVersion identifies the document and archive layout produced by
// this package. It participates in cache keys so archives built by older
// versions are never served for newer ones.
const FormatVersion = "1.0"

// DefaultFlowName is used when options omit a flow name.
const DefaultFlowName = "IntegrationFlow"

// Options configures one assembly run.
// This struct supports JSON serialization so callers can persist or
// transmit run configurations.
type Options struct {
	// FlowName names the process and the .iflw archive entry.
	FlowName string `json:"flow_name,omitempty"`

	// Layout holds spacing constants and dimension overrides.
	Layout layout.Config `json:"layout,omitempty"`

	// Refresh bypasses the cache and recomputes everything.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Registry *template.Registry `json:"-"`
	Logger   *log.Logger        `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.FlowName == "" {
		o.FlowName = DefaultFlowName
	}
	if err := errors.ValidateElementID(o.FlowName); err != nil {
		return err
	}
	if o.Layout.HSpacing == 0 && o.Layout.VSpacing == 0 && o.Layout.LaneHeight == 0 {
		o.Layout = layout.DefaultConfig()
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if o.Registry == nil {
		o.Registry = template.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		HSpacing:       o.Layout.HSpacing,
		VSpacing:       o.Layout.VSpacing,
		LaneHeight:     o.Layout.LaneHeight,
		MarginX:        o.Layout.MarginX,
		MarginY:        o.Layout.MarginY,
		ParticipantGap: o.Layout.ParticipantGap,
	}
}

// PackageKeyOpts returns cache key options for archive packaging. The
// registered template types are part of the key: a registry with extra
// templates renders different documents for the same graph. The caller
// fills in LayoutHash once the geometry is known.
func (o *Options) PackageKeyOpts() cache.PackageKeyOpts {
	types := ""
	for _, t := range o.Registry.Types() {
		types += t + ";"
	}
	return cache.PackageKeyOpts{
		FlowName:      o.FlowName,
		TemplateTypes: types,
		FormatVersion: FormatVersion,
	}
}

// Diagnostic is a non-fatal finding surfaced to the caller. Assembly
// continues past diagnostics; they never abort a run.
type Diagnostic struct {
	Code    errors.Code `json:"code"`
	NodeID  string      `json:"node_id,omitempty"`
	Message string      `json:"message"`
}

func (d Diagnostic) String() string {
	if d.NodeID == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s: node %s: %s", d.Code, d.NodeID, d.Message)
}

// Entry is one file inside the package archive.
type Entry struct {
	Path string
	Data []byte
}

// Result contains the outputs of an assembly run.
type Result struct {
	// Document is the rendered process definition (.iflw content).
	Document []byte

	// Layout is the computed geometry behind the document's diagram section.
	Layout *layout.Layout

	// Entries are the archive files in packaging order.
	Entries []Entry

	// Archive is the deterministic zip of Entries.
	Archive []byte

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Warnings collects non-fatal diagnostics (e.g., unknown component
	// types rendered through the passthrough template).
	Warnings []Diagnostic

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains assembly execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	ValidateTime time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
	PackageTime  time.Duration
}

// CacheInfo tracks cache hits for each assembly stage.
type CacheInfo struct {
	LayoutHit  bool // Whether the layout came from cache
	PackageHit bool // Whether the whole archive came from cache
}

// Assemble runs the full validate → layout → render → package pipeline
// without caching. It is a pure function of (graph, options): identical
// inputs produce byte-identical archives. Use a [Runner] for cached
// execution.
func Assemble(ctx context.Context, g *flow.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{
		Stats: Stats{NodeCount: g.NodeCount(), EdgeCount: g.EdgeCount()},
	}

	graphData, err := flowio.MarshalGraph(g)
	if err != nil {
		return nil, err
	}
	result.GraphHash = cache.Hash(graphData)

	validateStart := time.Now()
	warnings, err := Validate(g, opts.Registry)
	if err != nil {
		return nil, err
	}
	result.Warnings = warnings
	result.Stats.ValidateTime = time.Since(validateStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layoutStart := time.Now()
	lay, err := layout.Compute(g, Categories(g, opts.Registry), opts.Layout)
	if err != nil {
		return nil, err
	}
	result.Layout = lay
	result.Stats.LayoutTime = time.Since(layoutStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	renderStart := time.Now()
	doc, err := BuildDocument(g, opts.Registry, lay, opts.FlowName)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.RenderTime = time.Since(renderStart)

	packageStart := time.Now()
	entries := BuildEntries(doc, g, opts.FlowName)
	archive, err := BuildArchive(entries)
	if err != nil {
		return nil, err
	}
	result.Entries = entries
	result.Archive = archive
	result.Stats.PackageTime = time.Since(packageStart)

	return result, nil
}

// Categories maps each node id to its dimension category, resolving
// unknown component types to the fallback template's category.
func Categories(g *flow.Graph, reg *template.Registry) map[string]string {
	cats := make(map[string]string, g.NodeCount())
	for _, n := range g.Nodes() {
		spec, _ := reg.Resolve(n.Type)
		cats[n.ID] = spec.Category
	}
	return cats
}
