package models

import (
	"fmt"
	"time"
)

// TimeRange is the provider-defined window for "top" statistics.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"  // ~4 weeks
	MediumTerm TimeRange = "medium_term" // ~6 months
	LongTerm   TimeRange = "long_term"   // several years
)

// ParseTimeRange maps user input to a [TimeRange], accepting both the wire
// values and short/medium/long shorthand.
func ParseTimeRange(s string) (TimeRange, error) {
	switch s {
	case "short", string(ShortTerm):
		return ShortTerm, nil
	case "medium", string(MediumTerm), "":
		return MediumTerm, nil
	case "long", string(LongTerm):
		return LongTerm, nil
	default:
		return "", fmt.Errorf("unknown time range %q", s)
	}
}

func (t TimeRange) String() string { return string(t) }

// Valid reports whether the value is one of the three provider windows.
func (t TimeRange) Valid() bool {
	return t == ShortTerm || t == MediumTerm || t == LongTerm
}

// Category identifies one of the four top lists in a snapshot.
type Category string

const (
	CategoryArtists Category = "artists"
	CategoryTracks  Category = "tracks"
	CategoryAlbums  Category = "albums"
	CategoryGenres  Category = "genres"
)

// Categories lists all snapshot categories in display order.
func Categories() []Category {
	return []Category{CategoryArtists, CategoryTracks, CategoryAlbums, CategoryGenres}
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ArtistRef is a lightweight artist reference carried on tracks and albums.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Artist represents a music artist.
type Artist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Genres      []string `json:"genres"`
	Images      []Image  `json:"images"`
	ExternalURL string   `json:"external_url,omitempty"`
}

// Album represents an album.
type Album struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Images      []Image     `json:"images"`
	ReleaseDate string      `json:"release_date"`
	TotalTracks int         `json:"total_tracks"`
	Artists     []ArtistRef `json:"artists"`
	ExternalURL string      `json:"external_url,omitempty"`
}

// Track represents a track with its album and contributing artists.
type Track struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Album       Album       `json:"album"`
	Artists     []ArtistRef `json:"artists"`
	DurationMS  int         `json:"duration_ms"`
	ExternalURL string      `json:"external_url,omitempty"`
}

// ArtistNames joins the track's contributing artist names for display.
func (t Track) ArtistNames() string {
	names := ""
	for i, a := range t.Artists {
		if i > 0 {
			names += ", "
		}
		names += a.Name
	}
	return names
}

// RankedGenre is a derived genre ranking entry. Not persisted beyond one
// aggregation pass; recomputed per request.
type RankedGenre struct {
	Name  string `json:"name"`
	Count int    `json:"count"` // Number of distinct sampled artists exhibiting this genre
	Label string `json:"label"` // Pluralized display label, e.g. "3 artists"
}

// Snapshot holds the four top lists fetched for one (limit, time range) pair.
//
// The lists are independent fetches issued against the same time range value;
// they may reflect slightly different fetch instants.
type Snapshot struct {
	Limit     int           `json:"limit"`
	TimeRange TimeRange     `json:"time_range"`
	Artists   []Artist      `json:"artists"`
	Tracks    []Track       `json:"tracks"`
	Albums    []Album       `json:"albums"`
	Genres    []RankedGenre `json:"genres"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Credential is an access token paired with its expiry instant.
type Credential struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Expired reports whether the credential is past its expiry at the given instant.
func (c Credential) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
