package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects can share
// one cache backend without key collisions.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for cached layout geometry.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// PackageKey generates a prefixed key for cached package archives.
func (k *ScopedKeyer) PackageKey(graphHash string, opts PackageKeyOpts) string {
	return k.prefix + k.inner.PackageKey(graphHash, opts)
}
