package aggregate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
)

func trackOnAlbum(trackID, albumID string) models.Track {
	return models.Track{
		ID:   trackID,
		Name: "Track " + trackID,
		Album: models.Album{
			ID:   albumID,
			Name: "Album " + albumID,
		},
	}
}

func TestTopAlbums(t *testing.T) {
	t.Run("Reverse Index Weighting", func(t *testing.T) {
		// Album A appears at indices 0 and 1, album B only at the tail.
		// A's weight is N + (N-1) against B's 1, so A must rank first.
		n := 10
		var tracks []models.Track
		tracks = append(tracks,
			trackOnAlbum("t0", "A"),
			trackOnAlbum("t1", "A"),
		)
		for i := 2; i < n-1; i++ {
			tracks = append(tracks, trackOnAlbum(fmt.Sprintf("t%d", i), fmt.Sprintf("filler-%d", i)))
		}
		tracks = append(tracks, trackOnAlbum("tail", "B"))

		got, err := TopAlbums(tracks, len(tracks))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got[0].ID != "A" {
			t.Errorf("expected album A ranked first, got %s", got[0].ID)
		}
		if got[len(got)-1].ID != "B" {
			t.Errorf("expected album B ranked last, got %s", got[len(got)-1].ID)
		}
	})

	t.Run("Early Single Track Beats Late Single Track", func(t *testing.T) {
		tracks := []models.Track{
			trackOnAlbum("t0", "early"),
			trackOnAlbum("t1", "mid"),
			trackOnAlbum("t2", "late"),
		}

		got, err := TopAlbums(tracks, 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := []string{"early", "mid", "late"}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("rank %d: expected %s, got %s", i, id, got[i].ID)
			}
		}
	})

	t.Run("Many Late Tracks Can Outweigh One Early Track", func(t *testing.T) {
		// One track at index 0 (weight 6) vs an album on indices 2..5
		// (weights 4+3+2+1 = 10).
		tracks := []models.Track{
			trackOnAlbum("t0", "single"),
			trackOnAlbum("t1", "filler"),
			trackOnAlbum("t2", "spread"),
			trackOnAlbum("t3", "spread"),
			trackOnAlbum("t4", "spread"),
			trackOnAlbum("t5", "spread"),
		}

		got, err := TopAlbums(tracks, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got[0].ID != "spread" {
			t.Errorf("expected accumulated weight to win, got %s first", got[0].ID)
		}
	})

	t.Run("Ties Break By First Encounter", func(t *testing.T) {
		// Both albums collect a single track of equal weight by mirroring
		// positions: x at 0 and 3 (w=4+1=5), y at 1 and 2 (w=3+2=5).
		tracks := []models.Track{
			trackOnAlbum("t0", "x"),
			trackOnAlbum("t1", "y"),
			trackOnAlbum("t2", "y"),
			trackOnAlbum("t3", "x"),
		}

		got, err := TopAlbums(tracks, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got[0].ID != "x" || got[1].ID != "y" {
			t.Errorf("expected stable tie-break [x y], got [%s %s]", got[0].ID, got[1].ID)
		}
	})

	t.Run("Skips Tracks Without Album ID", func(t *testing.T) {
		tracks := []models.Track{
			{ID: "t0", Name: "loose single"},
			trackOnAlbum("t1", "real"),
		}

		got, err := TopAlbums(tracks, 5)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 || got[0].ID != "real" {
			t.Errorf("expected only the real album, got %+v", got)
		}
	})

	t.Run("Truncates To Limit", func(t *testing.T) {
		var tracks []models.Track
		for i := 0; i < 8; i++ {
			tracks = append(tracks, trackOnAlbum(fmt.Sprintf("t%d", i), fmt.Sprintf("al-%d", i)))
		}

		got, err := TopAlbums(tracks, 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 albums, got %d", len(got))
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		_, err := TopAlbums(nil, 5)
		if !errors.Is(err, shared.ErrAggregationInput) {
			t.Errorf("expected ErrAggregationInput, got %v", err)
		}
	})

	t.Run("No Album Data At All", func(t *testing.T) {
		_, err := TopAlbums([]models.Track{{ID: "t0"}}, 5)
		if !errors.Is(err, shared.ErrAggregationInput) {
			t.Errorf("expected ErrAggregationInput, got %v", err)
		}
	})

	t.Run("Invalid Limit", func(t *testing.T) {
		_, err := TopAlbums([]models.Track{trackOnAlbum("t0", "a")}, 0)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
