package tasks

import (
	"fmt"

	"github.com/desertthunder/soundwrap/internal/models"
)

// ProgressUpdate represents a progress event during a snapshot load.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CheckCache Phase = iota
	CacheHit
	FetchArtists
	FetchTracks
	FetchAlbums
	FetchGenres
	StoreCache
	Ready
)

func (p Phase) String() string {
	switch p {
	case CheckCache:
		return "check_cache"
	case CacheHit:
		return "cache_hit"
	case FetchArtists:
		return "fetch_artists"
	case FetchTracks:
		return "fetch_tracks"
	case FetchAlbums:
		return "fetch_albums"
	case FetchGenres:
		return "fetch_genres"
	case StoreCache:
		return "store_cache"
	case Ready:
		return "ready"
	default:
		return ""
	}
}

// Status is the coarse lifecycle state a UI renders while a load runs.
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return ""
	}
}

func checkCacheUpdate(tr models.TimeRange) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckCache,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Checking cache (%s)...", tr),
	}
}

func cacheHitUpdate(snap *models.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheHit,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Serving cached snapshot from %s", snap.FetchedAt.Format("15:04:05")),
		Data:    snap,
	}
}

func fetchCategoryUpdate(phase Phase, category models.Category, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching top %s...", step, total, category),
	}
}

func storeCacheUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   StoreCache,
		Step:    1,
		Total:   1,
		Message: "Caching snapshot...",
	}
}

func readyUpdate(snap *models.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Ready,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Snapshot ready (%d artists, %d tracks)", len(snap.Artists), len(snap.Tracks)),
		Data:    snap,
	}
}
