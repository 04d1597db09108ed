package assemble

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/flowsmith/flowsmith/pkg/cache"
	"github.com/flowsmith/flowsmith/pkg/flow"
	flowio "github.com/flowsmith/flowsmith/pkg/io"
	"github.com/flowsmith/flowsmith/pkg/layout"
	"github.com/flowsmith/flowsmith/pkg/observability"
)

// Runner encapsulates assembly execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store run results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete validate → layout → render → package
// pipeline with caching. Validation always runs so warnings and
// structural errors surface even on a full cache hit.
func (r *Runner) Execute(ctx context.Context, g *flow.Graph, opts Options) (*Result, error) {
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}
	logger = logger.With("run", uuid.NewString()[:8])
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
	observability.Assembly().OnValidateStart(ctx, g.NodeCount(), g.EdgeCount())
	warnings, err := Validate(g, opts.Registry)
	observability.Assembly().OnValidateComplete(ctx, len(warnings), time.Since(validateStart), err)
	if err != nil {
		return nil, err
	}
	result.Warnings = warnings
	result.Stats.ValidateTime = time.Since(validateStart)

	logger.Info("validated graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"warnings", len(warnings),
		"duration", result.Stats.ValidateTime)

	layoutStart := time.Now()
	observability.Assembly().OnLayoutStart(ctx, g.NodeCount())
	lay, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, g, result.GraphHash, opts)
	observability.Assembly().OnLayoutComplete(ctx, time.Since(layoutStart), err)
	if err != nil {
		return nil, err
	}
	result.Layout = lay
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"columns", maxColumn(lay)+1,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	observability.Assembly().OnRenderStart(ctx, opts.FlowName)
	doc, packageHit, err := r.renderWithCacheInfo(ctx, g, result.GraphHash, lay, opts)
	observability.Assembly().OnRenderComplete(ctx, opts.FlowName, time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.PackageHit = packageHit

	packageStart := time.Now()
	result.Entries = BuildEntries(doc, g, opts.FlowName)
	result.Archive, err = BuildArchive(result.Entries)
	if err != nil {
		return nil, err
	}
	result.Stats.PackageTime = time.Since(packageStart)
	observability.Assembly().OnPackageComplete(ctx, opts.FlowName, len(result.Archive), result.Stats.PackageTime, nil)

	logger.Info("packaged archive",
		"entries", len(result.Entries),
		"bytes", len(result.Archive),
		"cached", packageHit,
		"duration", result.Stats.PackageTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo computes the layout with caching and
// returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *flow.Graph, graphHash string, opts Options) (*layout.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Layout
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return &cached, true, nil
			}
			// Corrupt entry: fall through to recompute.
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	lay, err := layout.Compute(g, Categories(g, opts.Registry), opts.Layout)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(lay); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return lay, false, nil
}

// renderWithCacheInfo renders the document with caching keyed on the
// graph content hash plus the layout content hash, so both graph edits
// and spacing changes invalidate the cached document. Entries and
// archive are rebuilt from the document on every run; both are
// deterministic, so a cached document yields an identical archive.
func (r *Runner) renderWithCacheInfo(ctx context.Context, g *flow.Graph, graphHash string, lay *layout.Layout, opts Options) ([]byte, bool, error) {
	layoutData, err := json.Marshal(lay)
	if err != nil {
		return nil, false, err
	}
	keyOpts := opts.PackageKeyOpts()
	keyOpts.LayoutHash = cache.Hash(layoutData)
	cacheKey := r.Keyer.PackageKey(graphHash, keyOpts)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "package")
			return data, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "package")

	doc, err := BuildDocument(g, opts.Registry, lay, opts.FlowName)
	if err != nil {
		return nil, false, err
	}
	_ = r.Cache.Set(ctx, cacheKey, doc, cache.PackageTTL)
	observability.Cache().OnCacheSet(ctx, "package", len(doc))
	return doc, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func maxColumn(lay *layout.Layout) int {
	max := 0
	for _, c := range lay.Columns {
		if c > max {
			max = c
		}
	}
	return max
}
