package aggregate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
)

func artistWithGenres(id string, genres ...string) models.Artist {
	return models.Artist{ID: id, Name: "Artist " + id, Genres: genres}
}

func TestTopGenres(t *testing.T) {
	t.Run("Counts Distinct Artists Per Genre", func(t *testing.T) {
		artists := []models.Artist{
			artistWithGenres("1", "pop", "rock"),
			artistWithGenres("2", "pop"),
			artistWithGenres("3", "jazz"),
		}

		got, err := TopGenres(artists, 2)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(got) != 2 {
			t.Fatalf("expected 2 genres, got %d", len(got))
		}
		if got[0].Name != "pop" || got[0].Count != 2 {
			t.Errorf("expected pop ranked first with count 2, got %+v", got[0])
		}
		if got[0].Label != "2 artists" {
			t.Errorf("expected label '2 artists', got %q", got[0].Label)
		}
		// rock and jazz tie at 1; first-encountered order wins.
		if got[1].Name != "rock" || got[1].Count != 1 {
			t.Errorf("expected rock second by stable tie-break, got %+v", got[1])
		}
		if got[1].Label != "1 artist" {
			t.Errorf("expected singular label '1 artist', got %q", got[1].Label)
		}
	})

	t.Run("Duplicate Genre Within One Artist Counts Once", func(t *testing.T) {
		artists := []models.Artist{
			artistWithGenres("1", "pop", "pop"),
			artistWithGenres("2", "rock"),
			artistWithGenres("3", "rock"),
		}

		got, err := TopGenres(artists, 5)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got[0].Name != "rock" || got[0].Count != 2 {
			t.Errorf("expected rock first with count 2, got %+v", got[0])
		}
		if got[1].Name != "pop" || got[1].Count != 1 {
			t.Errorf("expected pop counted once per artist, got %+v", got[1])
		}
	})

	t.Run("Deterministic For Identical Input", func(t *testing.T) {
		var artists []models.Artist
		for i := 0; i < 20; i++ {
			artists = append(artists, artistWithGenres(
				fmt.Sprintf("%d", i),
				fmt.Sprintf("genre-%d", i%7),
				fmt.Sprintf("genre-%d", i%3),
			))
		}

		first, err := TopGenres(artists, 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for run := 0; run < 3; run++ {
			again, err := TopGenres(artists, 10)
			if err != nil {
				t.Fatalf("run %d: expected no error, got %v", run, err)
			}
			if len(again) != len(first) {
				t.Fatalf("run %d: length changed: %d vs %d", run, len(again), len(first))
			}
			for i := range first {
				if again[i] != first[i] {
					t.Errorf("run %d: rank %d differs: %+v vs %+v", run, i, again[i], first[i])
				}
			}
		}
	})

	t.Run("Truncates To Limit", func(t *testing.T) {
		artists := []models.Artist{
			artistWithGenres("1", "pop", "rock", "jazz", "folk", "metal"),
		}

		got, err := TopGenres(artists, 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 genres, got %d", len(got))
		}
	})

	t.Run("Ignores Artists Without Genres", func(t *testing.T) {
		artists := []models.Artist{
			artistWithGenres("1"),
			artistWithGenres("2", "house"),
		}

		got, err := TopGenres(artists, 5)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 || got[0].Name != "house" {
			t.Errorf("expected single genre 'house', got %+v", got)
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		_, err := TopGenres(nil, 5)
		if !errors.Is(err, shared.ErrAggregationInput) {
			t.Errorf("expected ErrAggregationInput, got %v", err)
		}
	})

	t.Run("Invalid Limit", func(t *testing.T) {
		_, err := TopGenres([]models.Artist{artistWithGenres("1", "pop")}, 0)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
