// Package assets provides the per-pack, per-segment frame cache and its
// readiness tracking.
package assets

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/flipbook/internal/domain/pack"
	"github.com/osa030/flipbook/internal/infra/metrics"
)

// Fetcher asynchronously decodes the image stored at path.
// done must be called exactly once, either synchronously or from another goroutine.
type Fetcher interface {
	Fetch(ctx context.Context, path string, done func(image.Image, error))
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, path string, done func(image.Image, error))

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, path string, done func(image.Image, error)) {
	f(ctx, path, done)
}

// Progress holds the global expected/loaded totals used by the loading indicator.
type Progress struct {
	Expected int // Frames requested so far
	Loaded   int // Frames resolved so far, successful or not
}

// Percent returns the loaded share in whole percent.
func (p Progress) Percent() int {
	if p.Expected == 0 {
		return 0
	}
	return 100 * p.Loaded / p.Expected
}

// Cache lazily loads segments and tracks their readiness.
// Entries are never evicted.
type Cache struct {
	mu      sync.RWMutex
	packs   []pack.Pack
	entries []map[pack.Segment]*Entry

	fetcher Fetcher
	ctx     context.Context

	expected atomic.Int64
	loaded   atomic.Int64
}

// New creates a cache for the given manifest.
// ctx is passed to every fetch; cancelling it is the only way to abandon loads.
func New(ctx context.Context, packs []pack.Pack, fetcher Fetcher) *Cache {
	entries := make([]map[pack.Segment]*Entry, len(packs))
	for i := range entries {
		entries[i] = make(map[pack.Segment]*Entry, len(pack.Segments))
	}
	return &Cache{
		packs:   packs,
		entries: entries,
		fetcher: fetcher,
		ctx:     ctx,
	}
}

// Packs returns the manifest the cache was created with.
func (c *Cache) Packs() []pack.Pack {
	return c.packs
}

// EnsureLoaded issues load requests for every frame of a segment unless the
// segment was requested before. It never blocks on the loads themselves.
func (c *Cache) EnsureLoaded(packIndex int, seg pack.Segment) {
	if !c.validIndex(packIndex) || !seg.Valid() {
		zlog.Error().Msgf("assets: ensure loaded called with invalid target: pack=%d segment=%s", packIndex, seg)
		return
	}

	p := c.packs[packIndex]
	spec := p.Spec(seg)

	c.mu.Lock()
	if _, exists := c.entries[packIndex][seg]; exists {
		c.mu.Unlock()
		return
	}
	entry := newEntry(seg, spec.Count)
	c.entries[packIndex][seg] = entry
	c.mu.Unlock()

	c.expected.Add(int64(spec.Count))
	metrics.FramesRequestedTotal.WithLabelValues(p.Name, seg.String()).Add(float64(spec.Count))
	zlog.Debug().Msgf("assets: loading segment: pack=%s segment=%s frames=%d", p.Name, seg, spec.Count)

	// Requests are issued outside the lock so synchronous fetchers may resolve inline.
	for i := 1; i <= spec.Count; i++ {
		slot := i - 1
		path := spec.FramePath(p.Base, i)
		c.fetcher.Fetch(c.ctx, path, func(img image.Image, err error) {
			if !entry.resolve(slot, img, err) {
				zlog.Warn().Msgf("assets: duplicate completion ignored: path=%s", path)
				return
			}
			c.loaded.Add(1)

			result := metrics.ResultOK
			if entry.State(slot) == SlotFailed {
				result = metrics.ResultFailed
				if c.ctx.Err() == nil {
					zlog.Warn().Msgf("assets: failed to load frame: path=%s error=%v", path, err)
				}
			}
			metrics.FramesResolvedTotal.WithLabelValues(p.Name, seg.String(), result).Inc()
			if entry.Resolved() == spec.Count {
				zlog.Debug().Msgf("assets: segment resolved: pack=%s segment=%s loaded=%d failed=%d",
					p.Name, seg, entry.Loaded(), entry.Failed())
			}
		})
	}
}

// EnsurePackAll requests all three segments of a pack.
func (c *Cache) EnsurePackAll(packIndex int) {
	for _, seg := range pack.Segments {
		c.EnsureLoaded(packIndex, seg)
	}
}

// Entry returns the cache entry of a segment if it has been requested.
func (c *Cache) Entry(packIndex int, seg pack.Segment) (*Entry, bool) {
	if !c.validIndex(packIndex) {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[packIndex][seg]
	return e, ok
}

// IsSegmentReady reports whether every declared frame of the segment loaded
// successfully. A single failed frame keeps the segment unready forever.
func (c *Cache) IsSegmentReady(packIndex int, seg pack.Segment) bool {
	e, ok := c.Entry(packIndex, seg)
	if !ok {
		return false
	}
	return e.Loaded() == c.packs[packIndex].Spec(seg).Count
}

// IsPackReady reports whether all three segments of a pack are ready.
func (c *Cache) IsPackReady(packIndex int) bool {
	for _, seg := range pack.Segments {
		if !c.IsSegmentReady(packIndex, seg) {
			return false
		}
	}
	return true
}

// FirstFrame returns the first loaded frame of a requested segment.
func (c *Cache) FirstFrame(packIndex int, seg pack.Segment) (image.Image, int, bool) {
	e, ok := c.Entry(packIndex, seg)
	if !ok {
		return nil, -1, false
	}
	return e.First()
}

// Progress returns the global readiness counters.
func (c *Cache) Progress() Progress {
	return Progress{
		Expected: int(c.expected.Load()),
		Loaded:   int(c.loaded.Load()),
	}
}

func (c *Cache) validIndex(packIndex int) bool {
	return packIndex >= 0 && packIndex < len(c.packs)
}
