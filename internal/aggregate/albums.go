package aggregate

import (
	"fmt"
	"sort"

	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
)

// TrackSampleSize is the recommended track sample for album rankings.
const TrackSampleSize = 500

// TopAlbums groups the sampled tracks by album and returns the limit
// highest-weighted albums.
//
// Tracks arrive in the provider's own "top tracks" order, most-played first.
// Reverse-index weighting preserves that signal: the track at zero-based
// index i contributes (len(tracks) - i) to its album's total, so an album
// reached through early tracks outranks one reached through the same number
// of late tracks. Sorting is by weight descending with first-encountered
// order breaking ties.
func TopAlbums(tracks []models.Track, limit int) ([]models.Album, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks to derive albums from", shared.ErrAggregationInput)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1", shared.ErrInvalidArgument)
	}

	n := len(tracks)
	weights := make(map[string]int)
	albums := make(map[string]models.Album)
	var order []string

	for i, track := range tracks {
		id := track.Album.ID
		if id == "" {
			continue
		}
		if _, ok := weights[id]; !ok {
			order = append(order, id)
			albums[id] = track.Album
		}
		weights[id] += n - i
	}

	if len(order) == 0 {
		return nil, fmt.Errorf("%w: sampled tracks carry no album data", shared.ErrAggregationInput)
	}

	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return weights[ranked[i]] > weights[ranked[j]]
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	result := make([]models.Album, 0, len(ranked))
	for _, id := range ranked {
		result = append(result, albums[id])
	}
	return result, nil
}
