// Package cache provides content-addressed caching for assembly runs.
//
// The engine itself is stateless; caching is an optional layer in front
// of it. Keys are derived from the graph content hash plus the options
// that influence the output, so a cache hit is always byte-identical to
// a fresh run.
//
// Backends:
//   - file: directory-based storage for CLI usage
//   - redis: Redis-backed storage for shared deployments
//   - null: disabled caching
package cache

import (
	"context"
	"time"
)

// Standard TTLs per artifact kind. Layouts are cheap to recompute, so
// they expire sooner than packaged archives.
const (
	LayoutTTL  = 24 * time.Hour
	PackageTTL = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts captures the layout inputs that affect geometry.
type LayoutKeyOpts struct {
	HSpacing       float64 `json:"h_spacing"`
	VSpacing       float64 `json:"v_spacing"`
	LaneHeight     float64 `json:"lane_height"`
	MarginX        float64 `json:"margin_x"`
	MarginY        float64 `json:"margin_y"`
	ParticipantGap float64 `json:"participant_gap"`
}

// PackageKeyOpts captures the packaging inputs that affect the archive
// beyond the graph content itself. LayoutHash is the content hash of the
// computed geometry, so spacing changes invalidate packaged documents
// even when the graph is unchanged.
type PackageKeyOpts struct {
	FlowName      string `json:"flow_name"`
	TemplateTypes string `json:"template_types"`
	FormatVersion string `json:"format_version"`
	LayoutHash    string `json:"layout_hash"`
}

// Keyer derives cache keys from content hashes and option sets.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	PackageKey(graphHash string, opts PackageKeyOpts) string
}

// DefaultKeyer hashes the options together with the graph hash.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for cached layout geometry.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// PackageKey generates a key for cached package archives.
func (k *DefaultKeyer) PackageKey(graphHash string, opts PackageKeyOpts) string {
	return hashKey("package", graphHash, opts)
}
