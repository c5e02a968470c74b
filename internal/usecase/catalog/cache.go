package catalog

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	domcat "github.com/trebound/catalog-search/internal/domain/catalog"
	"github.com/trebound/catalog-search/internal/metrics"
	"github.com/trebound/catalog-search/internal/textnorm"
)

const (
	// DefaultTTL is how long a snapshot is served before it is refreshed.
	DefaultTTL            = 5 * time.Minute
	defaultRefreshTimeout = 10 * time.Second
	refreshKey            = "refresh"
)

// Refresh results reported in metrics.
const (
	refreshOK      = "ok"
	refreshStale   = "stale"
	refreshMirror  = "mirror"
	refreshPartial = "partial"
	refreshEmpty   = "empty"
)

// Limits caps how many items are fetched per collection.
type Limits struct {
	Activities   int
	Venues       int
	Destinations int
}

// DefaultLimits returns the default fetch caps.
func DefaultLimits() Limits {
	return Limits{Activities: 100, Venues: 50, Destinations: 30}
}

// Cache serves an in-memory catalog snapshot and refreshes it from the
// Source once it expires. Readers always get one complete snapshot; concurrent
// readers of an expired snapshot share a single refresh.
type Cache struct {
	source         Source
	mirror         Mirror
	logger         *zap.Logger
	ttl            time.Duration
	refreshTimeout time.Duration
	limits         Limits
	now            func() time.Time

	current atomic.Pointer[domcat.Snapshot]
	flight  singleflight.Group
}

// New creates a catalog cache over source.
func New(source Source, logger *zap.Logger) *Cache {
	return &Cache{
		source:         source,
		logger:         logger,
		ttl:            DefaultTTL,
		refreshTimeout: defaultRefreshTimeout,
		limits:         DefaultLimits(),
		now:            time.Now,
	}
}

// WithTTL sets the snapshot lifetime.
func (c *Cache) WithTTL(ttl time.Duration) *Cache {
	if ttl > 0 {
		c.ttl = ttl
	}
	return c
}

// WithRefreshTimeout bounds one refresh of all collections.
func (c *Cache) WithRefreshTimeout(d time.Duration) *Cache {
	if d > 0 {
		c.refreshTimeout = d
	}
	return c
}

// WithLimits sets the per-collection fetch caps.
func (c *Cache) WithLimits(l Limits) *Cache {
	c.limits = l
	return c
}

// WithClock replaces the clock used to stamp and expire snapshots.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// WithMirror attaches an external store for the last complete snapshot.
func (c *Cache) WithMirror(m Mirror) *Cache {
	c.mirror = m
	return c
}

// Snapshot returns the current catalog. A fresh snapshot is returned without
// I/O. An expired one triggers a refresh; if the refresh fails the previous
// snapshot is served. With nothing to fall back to, the result is the empty
// snapshot, which reports Available() == false.
func (c *Cache) Snapshot(ctx context.Context) domcat.Snapshot {
	if snap := c.current.Load(); snap != nil && !snap.Expired(c.now(), c.ttl) {
		return *snap
	}

	v, _, _ := c.flight.Do(refreshKey, func() (any, error) {
		return c.refresh(ctx), nil
	})
	return v.(domcat.Snapshot)
}

// Invalidate drops the in-memory snapshot so the next read refreshes.
func (c *Cache) Invalidate() {
	c.current.Store(nil)
}

type fetchResult struct {
	kind  domcat.Kind
	items []domcat.Item
	err   error
}

func (c *Cache) refresh(ctx context.Context) domcat.Snapshot {
	// Another flight may have published while this caller was waiting.
	if snap := c.current.Load(); snap != nil && !snap.Expired(c.now(), c.ttl) {
		return *snap
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	results := c.fetchAll(ctx)

	snap := domcat.Snapshot{FetchedAt: c.now()}
	var failed []string
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, string(r.kind))
			c.logger.Error("Catalog collection fetch failed",
				zap.String("kind", string(r.kind)), zap.Error(r.err))
			r.items = []domcat.Item{}
		}
		switch r.kind {
		case domcat.KindActivity:
			snap.Activities = r.items
		case domcat.KindVenue:
			snap.Venues = r.items
		case domcat.KindDestination:
			snap.Destinations = r.items
		}
	}

	if len(failed) == 0 {
		c.publish(snap, refreshOK)
		c.saveMirror(ctx, snap)
		return snap
	}

	prev := c.current.Load()
	if prev != nil && !prev.Partial {
		c.logger.Warn("Serving stale catalog snapshot",
			zap.Strings("failed", failed), zap.Time("fetched_at", prev.FetchedAt))
		metrics.CatalogRefreshesTotal.WithLabelValues(refreshStale).Inc()
		return *prev
	}

	if mirrored, ok := c.loadMirror(ctx); ok {
		c.logger.Warn("Serving mirrored catalog snapshot",
			zap.Strings("failed", failed), zap.Time("fetched_at", mirrored.FetchedAt))
		c.publish(mirrored, refreshMirror)
		return mirrored
	}

	if len(failed) < len(results) {
		snap.Partial = true
		c.logger.Warn("Serving partial catalog snapshot", zap.Strings("failed", failed))
		c.publish(snap, refreshPartial)
		return snap
	}

	if prev != nil {
		metrics.CatalogRefreshesTotal.WithLabelValues(refreshStale).Inc()
		return *prev
	}

	c.logger.Error("Catalog unavailable", zap.Strings("failed", failed))
	metrics.CatalogRefreshesTotal.WithLabelValues(refreshEmpty).Inc()
	return domcat.Empty()
}

// fetchAll loads the three collections concurrently. A failing collection
// does not cancel the others.
func (c *Cache) fetchAll(ctx context.Context) []fetchResult {
	results := []fetchResult{
		{kind: domcat.KindActivity},
		{kind: domcat.KindVenue},
		{kind: domcat.KindDestination},
	}
	loaders := []func(context.Context, int) ([]domcat.Item, error){
		c.source.ListActivities,
		c.source.ListVenues,
		c.source.ListDestinations,
	}
	limits := []int{c.limits.Activities, c.limits.Venues, c.limits.Destinations}

	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			items, err := loaders[i](ctx, limits[i])
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].items = normalizeItems(results[i].kind, items)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Cache) publish(snap domcat.Snapshot, result string) {
	c.current.Store(&snap)
	metrics.CatalogRefreshesTotal.WithLabelValues(result).Inc()
	metrics.CatalogSnapshotTimestamp.Set(float64(snap.FetchedAt.Unix()))
	for _, k := range domcat.Kinds {
		metrics.CatalogItems.WithLabelValues(string(k)).Set(float64(len(snap.Collection(k))))
	}
	c.logger.Debug("Catalog snapshot published",
		zap.String("result", result),
		zap.Int("activities", len(snap.Activities)),
		zap.Int("venues", len(snap.Venues)),
		zap.Int("destinations", len(snap.Destinations)),
	)
}

func (c *Cache) saveMirror(ctx context.Context, snap domcat.Snapshot) {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.Save(ctx, snap); err != nil {
		c.logger.Warn("Catalog mirror save failed", zap.Error(err))
	}
}

func (c *Cache) loadMirror(ctx context.Context) (domcat.Snapshot, bool) {
	if c.mirror == nil {
		return domcat.Snapshot{}, false
	}
	snap, err := c.mirror.Load(ctx)
	if err != nil {
		c.logger.Warn("Catalog mirror load failed", zap.Error(err))
		return domcat.Snapshot{}, false
	}
	if !snap.Available() {
		return domcat.Snapshot{}, false
	}
	snap.Partial = false
	return snap, true
}

// normalizeItems converts stored rich text into plain search text and stamps
// the collection kind. The input slice is not modified.
func normalizeItems(kind domcat.Kind, items []domcat.Item) []domcat.Item {
	out := make([]domcat.Item, 0, len(items))
	for _, it := range items {
		it.Kind = kind
		it.Slug = strings.TrimSpace(it.Slug)
		it.Name = textnorm.Normalize(it.Name)
		it.Tagline = textnorm.Normalize(it.Tagline)
		it.Description = textnorm.Normalize(it.Description)
		it.Location = textnorm.Normalize(it.Location)
		it.ActivityType = textnorm.Normalize(it.ActivityType)
		it.Duration = textnorm.Normalize(it.Duration)
		it.GroupSize = textnorm.Normalize(it.GroupSize)
		it.Facets = normalizeFacets(it.Facets)
		out = append(out, it)
	}
	return out
}

func normalizeFacets(facets []string) []string {
	out := make([]string, 0, len(facets))
	for _, f := range facets {
		if n := textnorm.Normalize(f); n != "" {
			out = append(out, n)
		}
	}
	return out
}
