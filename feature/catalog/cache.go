package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedReader wraps a Reader with a TTL snapshot cache.
// A login burst after a cold start would otherwise hit storage once per
// request; singleflight collapses concurrent rebuilds into one.
type CachedReader struct {
	inner Reader
	ttl   time.Duration

	mu    sync.RWMutex
	snap  *Snapshot
	built time.Time

	sf singleflight.Group
}

// NewCachedReader wraps the reader. A zero TTL disables caching entirely.
func NewCachedReader(inner Reader, ttl time.Duration) *CachedReader {
	return &CachedReader{inner: inner, ttl: ttl}
}

// Snapshot returns the cached snapshot, rebuilding it when expired.
func (c *CachedReader) Snapshot(ctx context.Context) (Snapshot, error) {
	if c.ttl == 0 {
		return c.inner.Snapshot(ctx)
	}

	// Fast path: fresh cache
	c.mu.RLock()
	if c.snap != nil && time.Since(c.built) <= c.ttl {
		snap := *c.snap
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	// Slow path: rebuild under singleflight to prevent stampedes
	result, err, _ := c.sf.Do("snapshot", func() (any, error) {
		// Double-check after acquiring the singleflight slot
		c.mu.RLock()
		if c.snap != nil && time.Since(c.built) <= c.ttl {
			snap := *c.snap
			c.mu.RUnlock()
			return snap, nil
		}
		c.mu.RUnlock()

		snap, err := c.inner.Snapshot(ctx)
		if err != nil {
			return Snapshot{}, err
		}

		c.mu.Lock()
		c.snap = &snap
		c.built = time.Now()
		c.mu.Unlock()

		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	return result.(Snapshot), nil
}

// ListThemes serves theme ids from the cached snapshot.
func (c *CachedReader) ListThemes(ctx context.Context) ([]string, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.ThemeIDs(), nil
}

// ListLevels serves a theme's levels from the cached snapshot.
func (c *CachedReader) ListLevels(ctx context.Context, themeID string) ([]string, error) {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if theme, ok := snap.Theme(themeID); ok {
		return theme.Levels, nil
	}
	return nil, nil
}

// invalidate drops the cached snapshot, forcing a rebuild on the next read.
// Unexported until something outside this package needs to force a refresh;
// until then the TTL is the only expiry.
func (c *CachedReader) invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}
