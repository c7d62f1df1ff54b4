package aggregate

import (
	"fmt"
	"sort"

	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
)

// GenreSampleSize is the recommended artist sample for representative genre
// rankings.
const GenreSampleSize = 50

// TopGenres counts genre occurrences across the sampled artists and returns
// the limit highest-ranked genres.
//
// A genre's count is the number of distinct artists exhibiting it; an artist
// listing the same genre twice still contributes once. Sorting is by count
// descending with first-encountered order breaking ties.
func TopGenres(artists []models.Artist, limit int) ([]models.RankedGenre, error) {
	if len(artists) == 0 {
		return nil, fmt.Errorf("%w: no artists to derive genres from", shared.ErrAggregationInput)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1", shared.ErrInvalidArgument)
	}

	counts := make(map[string]int)
	var order []string

	for _, artist := range artists {
		seen := make(map[string]bool, len(artist.Genres))
		for _, genre := range artist.Genres {
			if genre == "" || seen[genre] {
				continue
			}
			seen[genre] = true
			if counts[genre] == 0 {
				order = append(order, genre)
			}
			counts[genre]++
		}
	}

	ranked := make([]models.RankedGenre, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, models.RankedGenre{
			Name:  name,
			Count: counts[name],
			Label: countLabel(counts[name]),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func countLabel(count int) string {
	if count > 1 {
		return fmt.Sprintf("%d artists", count)
	}
	return fmt.Sprintf("%d artist", count)
}
