package cache

// ScopedKeyer wraps a Keyer with a prefix so separate projects or
// deployments sharing one backend get their own namespaces.
//
// Example usage:
//
//	// Per-project keys when one Redis serves several map projects
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:berlin:")
//
//	// Shared keys otherwise
//	globalKeyer := NewDefaultKeyer()
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

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(mapHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(mapHash, opts)
}

// MetricsKey generates a prefixed key for metrics caching.
func (k *ScopedKeyer) MetricsKey(runID string) string {
	return k.prefix + k.inner.MetricsKey(runID)
}
