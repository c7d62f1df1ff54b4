package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/services"
	"github.com/desertthunder/soundwrap/internal/shared"
)

// snapshotCategory keys full-snapshot cache rows, alongside the four
// per-category values.
const snapshotCategory models.Category = "snapshot"

// SnapshotCache is the persistence contract the engine needs. Implemented by
// [repositories.SnapshotRepository]; abstracted for testing.
type SnapshotCache interface {
	Save(fingerprint string, tr models.TimeRange, limit int, category models.Category, payload any) error
	Load(fingerprint string, tr models.TimeRange, limit int, category models.Category, ttl time.Duration, out any) (bool, error)
	InvalidateRange(fingerprint string, tr models.TimeRange) error
}

// Engine defines snapshot loading operations.
type Engine interface {
	// Load returns a snapshot for the scope, serving from cache when a fresh
	// entry exists.
	Load(ctx context.Context, progress chan<- ProgressUpdate, tr models.TimeRange, limit int) (*models.Snapshot, error)

	// Refresh invalidates the scope's cache entries and fetches anew.
	Refresh(ctx context.Context, progress chan<- ProgressUpdate, tr models.TimeRange, limit int) (*models.Snapshot, error)
}

// SnapshotEngine implements [Engine] over a [services.Service] and an
// optional cache. The fingerprint scopes cache rows to the current
// credential so snapshots never leak across accounts.
type SnapshotEngine struct {
	service     services.Service
	cache       SnapshotCache
	fingerprint string
	ttl         time.Duration
	logger      *log.Logger
}

// NewSnapshotEngine creates a SnapshotEngine. cache may be nil, in which case
// every load hits the provider.
func NewSnapshotEngine(service services.Service, cache SnapshotCache, fingerprint string, ttl time.Duration, logger *log.Logger) *SnapshotEngine {
	return &SnapshotEngine{
		service:     service,
		cache:       cache,
		fingerprint: fingerprint,
		ttl:         ttl,
		logger:      logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *SnapshotEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Load returns a snapshot for the scope, serving from cache when possible.
func (e *SnapshotEngine) Load(ctx context.Context, progress chan<- ProgressUpdate, tr models.TimeRange, limit int) (*models.Snapshot, error) {
	return e.load(ctx, progress, tr, limit, false)
}

// Refresh invalidates the scope's cache entries and fetches anew.
func (e *SnapshotEngine) Refresh(ctx context.Context, progress chan<- ProgressUpdate, tr models.TimeRange, limit int) (*models.Snapshot, error) {
	if e.cache != nil {
		if err := e.cache.InvalidateRange(e.fingerprint, tr); err != nil {
			return nil, err
		}
	}
	return e.load(ctx, progress, tr, limit, true)
}

func (e *SnapshotEngine) load(ctx context.Context, progress chan<- ProgressUpdate, tr models.TimeRange, limit int, bypassCache bool) (*models.Snapshot, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1", shared.ErrInvalidArgument)
	}
	if !tr.Valid() {
		return nil, fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidArgument, tr)
	}

	if e.cache != nil && !bypassCache {
		e.sendProgress(progress, checkCacheUpdate(tr))
		var cached models.Snapshot
		hit, err := e.cache.Load(e.fingerprint, tr, limit, snapshotCategory, e.ttl, &cached)
		if err != nil {
			// A broken cache should not block a live fetch.
			e.logger.Warn("snapshot cache read failed", "error", err)
		}
		if hit {
			e.sendProgress(progress, cacheHitUpdate(&cached))
			return &cached, nil
		}
	}

	snap, err := e.fetchAll(ctx, progress, tr, limit)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		e.sendProgress(progress, storeCacheUpdate())
		if err := e.cache.Save(e.fingerprint, tr, limit, snapshotCategory, snap); err != nil {
			// Fetched data is still good; log and move on.
			e.logger.Warn("snapshot cache write failed", "error", err)
		}
	}

	e.sendProgress(progress, readyUpdate(snap))
	return snap, nil
}

// fetchAll issues the four category fetches concurrently and assembles a
// snapshot. Fetches are never retried here; the first failure in category
// order is returned, all failures are logged, and retrying is left to the
// caller's refresh action.
func (e *SnapshotEngine) fetchAll(ctx context.Context, progress chan<- ProgressUpdate, tr models.TimeRange, limit int) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Limit:     limit,
		TimeRange: tr,
	}

	categories := []struct {
		phase    Phase
		category models.Category
		fetch    func(context.Context) error
	}{
		{FetchArtists, models.CategoryArtists, func(ctx context.Context) error {
			artists, err := e.service.TopArtists(ctx, tr, limit)
			snap.Artists = artists
			return err
		}},
		{FetchTracks, models.CategoryTracks, func(ctx context.Context) error {
			tracks, err := e.service.TopTracks(ctx, tr, limit)
			snap.Tracks = tracks
			return err
		}},
		{FetchAlbums, models.CategoryAlbums, func(ctx context.Context) error {
			albums, err := e.service.TopAlbums(ctx, tr, limit)
			snap.Albums = albums
			return err
		}},
		{FetchGenres, models.CategoryGenres, func(ctx context.Context) error {
			genres, err := e.service.TopGenres(ctx, tr, limit)
			snap.Genres = genres
			return err
		}},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(categories))
	total := len(categories)

	for i, cat := range categories {
		e.sendProgress(progress, fetchCategoryUpdate(cat.phase, cat.category, i+1, total))
		wg.Add(1)
		go func(idx int, fetch func(context.Context) error) {
			defer wg.Done()
			errs[idx] = fetch(ctx)
		}(i, cat.fetch)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("snapshot load cancelled: %w", err)
	}

	var first error
	for i, err := range errs {
		if err == nil {
			continue
		}
		e.logger.Error("category fetch failed", "category", categories[i].category, "error", err)
		if first == nil {
			first = fmt.Errorf("failed to fetch top %s: %w", categories[i].category, err)
		}
	}
	if first != nil {
		return nil, first
	}

	snap.FetchedAt = time.Now()
	return snap, nil
}
