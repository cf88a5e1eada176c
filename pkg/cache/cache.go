package cache

import (
	"context"
	"time"
)

// Default TTLs for cached content.
const (
	// TTLLayout is how long computed layouts are kept. A layout only
	// changes when the input map or the settings change, and both are
	// part of the key, so entries can live for a long time.
	TTLLayout = 7 * 24 * time.Hour

	// TTLMetrics is how long per-run metrics summaries are kept.
	TTLMetrics = 24 * time.Hour
)

// Cache is the interface for caching backends.
// Implementations: RedisCache (server), FileCache (CLI), NullCache (disabled).
type Cache interface {
	// Get retrieves a value. Returns (data, true, nil) on hit,
	// (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Keyer generates cache keys. The default implementation hashes the
// inputs; ScopedKeyer adds a namespace prefix on top.
type Keyer interface {
	// LayoutKey generates a key for a computed layout, derived from the
	// hash of the input map and the settings that shape the result.
	LayoutKey(mapHash string, opts LayoutKeyOpts) string

	// MetricsKey generates a key for a run's metrics summary.
	MetricsKey(runID string) string
}

// LayoutKeyOpts are the settings that affect layout output. Settings
// that only control reporting, such as live updates or debug logging,
// are deliberately left out so they don't fragment the cache.
type LayoutKeyOpts struct {
	MaxTries           int
	EnableLocalSearch  bool
	GridWidth          int
	GridHeight         int
	BendCostWeight     float64
	SpacingCostWeight  float64
	OverheadCostWeight float64
	MoveCost           float64
	NodeSetRadius      int
	AcceptableCost     float64
	Seed               int64
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(mapHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", mapHash, opts)
}

// MetricsKey generates a key for a run's metrics summary.
func (k *DefaultKeyer) MetricsKey(runID string) string {
	return "metrics:" + runID
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
