package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = trackItem{}
	_ list.Item = albumItem{}
	_ list.Item = genreItem{}
)

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	rank   int
	artist models.Artist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.artist.Name) }
func (i artistItem) Description() string {
	if len(i.artist.Genres) == 0 {
		return "no genre data"
	}
	return strings.Join(i.artist.Genres, " • ")
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	rank  int
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.track.Name) }
func (i trackItem) Description() string {
	desc := i.track.ArtistNames()
	if i.track.Album.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album.Name)
	}
	return fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.track.DurationMS))
}

// albumItem wraps [models.Album] to implement [list.Item].
type albumItem struct {
	rank  int
	album models.Album
}

func (i albumItem) FilterValue() string { return i.album.Name }
func (i albumItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.album.Name) }
func (i albumItem) Description() string {
	var parts []string
	for _, ref := range i.album.Artists {
		parts = append(parts, ref.Name)
	}
	desc := strings.Join(parts, ", ")
	if i.album.ReleaseDate != "" {
		if desc != "" {
			desc = fmt.Sprintf("%s • %s", desc, i.album.ReleaseDate)
		} else {
			desc = i.album.ReleaseDate
		}
	}
	if desc == "" {
		return "album"
	}
	return desc
}

// genreItem wraps [models.RankedGenre] to implement [list.Item].
type genreItem struct {
	rank  int
	genre models.RankedGenre
}

func (i genreItem) FilterValue() string { return i.genre.Name }
func (i genreItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.genre.Name) }
func (i genreItem) Description() string { return i.genre.Label }

// snapshotItems builds the list items for one category of a snapshot.
func snapshotItems(snap *models.Snapshot, category models.Category) []list.Item {
	var items []list.Item
	switch category {
	case models.CategoryArtists:
		for i, artist := range snap.Artists {
			items = append(items, artistItem{rank: i + 1, artist: artist})
		}
	case models.CategoryTracks:
		for i, track := range snap.Tracks {
			items = append(items, trackItem{rank: i + 1, track: track})
		}
	case models.CategoryAlbums:
		for i, album := range snap.Albums {
			items = append(items, albumItem{rank: i + 1, album: album})
		}
	case models.CategoryGenres:
		for i, genre := range snap.Genres {
			items = append(items, genreItem{rank: i + 1, genre: genre})
		}
	}
	return items
}
