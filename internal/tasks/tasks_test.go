package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/services"
	"github.com/desertthunder/soundwrap/internal/shared"
)

// stubService counts calls and can fail selected categories.
type stubService struct {
	calls       atomic.Int64
	artistCalls atomic.Int64
	failArtists int32 // remaining artist failures
	failTracks  bool
}

func (s *stubService) TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]models.Artist, error) {
	s.calls.Add(1)
	s.artistCalls.Add(1)
	if atomic.AddInt32(&s.failArtists, -1) >= 0 {
		return nil, fmt.Errorf("%w: artists endpoint down", shared.ErrAPIRequest)
	}
	return []models.Artist{{ID: "a1", Name: "Artist"}}, nil
}

func (s *stubService) TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]models.Track, error) {
	s.calls.Add(1)
	if s.failTracks {
		return nil, fmt.Errorf("%w: tracks endpoint down", shared.ErrAPIRequest)
	}
	return []models.Track{{ID: "t1", Name: "Track"}}, nil
}

func (s *stubService) TopAlbums(ctx context.Context, tr models.TimeRange, limit int) ([]models.Album, error) {
	s.calls.Add(1)
	return []models.Album{{ID: "al1", Name: "Album"}}, nil
}

func (s *stubService) TopGenres(ctx context.Context, tr models.TimeRange, limit int) ([]models.RankedGenre, error) {
	s.calls.Add(1)
	return []models.RankedGenre{{Name: "pop", Count: 1, Label: "1 artist"}}, nil
}

func (s *stubService) Profile(ctx context.Context) (*services.Profile, error) {
	return &services.Profile{ID: "stub"}, nil
}

func (s *stubService) Name() string { return "stub" }

// memoryCache is an in-memory SnapshotCache.
type memoryCache struct {
	entries     map[string]*models.Snapshot
	saves       int
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*models.Snapshot{}}
}

func cacheKey(fingerprint string, tr models.TimeRange, limit int, category models.Category) string {
	return fmt.Sprintf("%s|%s|%d|%s", fingerprint, tr, limit, category)
}

func (c *memoryCache) Save(fingerprint string, tr models.TimeRange, limit int, category models.Category, payload any) error {
	snap, ok := payload.(*models.Snapshot)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}
	c.entries[cacheKey(fingerprint, tr, limit, category)] = snap
	c.saves++
	return nil
}

func (c *memoryCache) Load(fingerprint string, tr models.TimeRange, limit int, category models.Category, ttl time.Duration, out any) (bool, error) {
	snap, ok := c.entries[cacheKey(fingerprint, tr, limit, category)]
	if !ok {
		return false, nil
	}
	target, ok := out.(*models.Snapshot)
	if !ok {
		return false, fmt.Errorf("unexpected target type %T", out)
	}
	*target = *snap
	return true, nil
}

func (c *memoryCache) InvalidateRange(fingerprint string, tr models.TimeRange) error {
	c.invalidated++
	c.entries = map[string]*models.Snapshot{}
	return nil
}

func newTestEngine(service services.Service, cache SnapshotCache) *SnapshotEngine {
	return NewSnapshotEngine(service, cache, "fp-test", 5*time.Minute, shared.NewLogger(nil))
}

func TestSnapshotEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Load Fetches All Categories", func(t *testing.T) {
		svc := &stubService{}
		engine := newTestEngine(svc, nil)

		snap, err := engine.Load(ctx, nil, models.MediumTerm, 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(snap.Artists) == 0 || len(snap.Tracks) == 0 || len(snap.Albums) == 0 || len(snap.Genres) == 0 {
			t.Errorf("expected all four lists populated, got %+v", snap)
		}
		if snap.TimeRange != models.MediumTerm || snap.Limit != 10 {
			t.Errorf("expected scope recorded on snapshot, got %+v", snap)
		}
		if snap.FetchedAt.IsZero() {
			t.Error("expected FetchedAt to be set")
		}
		if got := svc.calls.Load(); got != 4 {
			t.Errorf("expected 4 service calls, got %d", got)
		}
	})

	t.Run("Failed Category Fails The Load", func(t *testing.T) {
		svc := &stubService{failTracks: true}
		engine := newTestEngine(svc, nil)

		_, err := engine.Load(ctx, nil, models.MediumTerm, 10)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Failed Fetch Is Never Retried", func(t *testing.T) {
		svc := &stubService{failArtists: 10}
		engine := newTestEngine(svc, nil)

		_, err := engine.Load(ctx, nil, models.MediumTerm, 10)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if got := svc.artistCalls.Load(); got != 1 {
			t.Errorf("expected exactly 1 artist fetch per load, got %d", got)
		}

		// Retry is the caller's job: a second load issues exactly one more.
		if _, err := engine.Load(ctx, nil, models.MediumTerm, 10); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if got := svc.artistCalls.Load(); got != 2 {
			t.Errorf("expected 2 artist fetches after two loads, got %d", got)
		}
	})

	t.Run("Cache Hit Skips The Provider", func(t *testing.T) {
		svc := &stubService{}
		cache := newMemoryCache()
		engine := newTestEngine(svc, cache)

		first, err := engine.Load(ctx, nil, models.MediumTerm, 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cache.saves != 1 {
			t.Errorf("expected one cache write, got %d", cache.saves)
		}

		callsAfterFirst := svc.calls.Load()
		second, err := engine.Load(ctx, nil, models.MediumTerm, 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if svc.calls.Load() != callsAfterFirst {
			t.Error("expected cached load to make no service calls")
		}
		if !second.FetchedAt.Equal(first.FetchedAt) {
			t.Error("expected cached snapshot to keep its original fetch instant")
		}
	})

	t.Run("Refresh Bypasses And Invalidates Cache", func(t *testing.T) {
		svc := &stubService{}
		cache := newMemoryCache()
		engine := newTestEngine(svc, cache)

		if _, err := engine.Load(ctx, nil, models.MediumTerm, 10); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		callsAfterFirst := svc.calls.Load()
		if _, err := engine.Refresh(ctx, nil, models.MediumTerm, 10); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cache.invalidated != 1 {
			t.Errorf("expected one invalidation, got %d", cache.invalidated)
		}
		if svc.calls.Load() != callsAfterFirst+4 {
			t.Error("expected refresh to refetch all categories")
		}
	})

	t.Run("Progress Updates Never Block", func(t *testing.T) {
		svc := &stubService{}
		engine := newTestEngine(svc, newMemoryCache())

		// Unbuffered channel with no reader; sends must be dropped, not block.
		progress := make(chan ProgressUpdate)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if _, err := engine.Load(ctx, progress, models.MediumTerm, 10); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("load blocked on progress channel")
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		svc := &stubService{}
		engine := newTestEngine(svc, nil)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := engine.Load(cancelled, nil, models.MediumTerm, 10); err == nil {
			t.Error("expected error from cancelled context")
		}
	})

	t.Run("Invalid Scope", func(t *testing.T) {
		engine := newTestEngine(&stubService{}, nil)

		if _, err := engine.Load(ctx, nil, models.MediumTerm, 0); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for limit 0, got %v", err)
		}
		if _, err := engine.Load(ctx, nil, models.TimeRange("bogus"), 10); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for bad time range, got %v", err)
		}
	})

	t.Run("Missing Service", func(t *testing.T) {
		engine := newTestEngine(nil, nil)

		if _, err := engine.Load(ctx, nil, models.MediumTerm, 10); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
