package services

import (
	"context"

	"github.com/desertthunder/soundwrap/internal/models"
)

// Service is the read-side contract for a listening-stats provider.
//
// Albums and genres are derived lists: the provider exposes no "top albums"
// or "top genres" endpoint, so implementations compute them from sampled
// track and artist data.
type Service interface {
	// TopArtists retrieves the listener's top artists for the time range,
	// most-listened first.
	TopArtists(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Artist, error)

	// TopTracks retrieves the listener's top tracks for the time range,
	// most-listened first.
	TopTracks(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Track, error)

	// TopAlbums derives the listener's top albums from a track sample.
	TopAlbums(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Album, error)

	// TopGenres derives the listener's top genres from an artist sample.
	TopGenres(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.RankedGenre, error)

	// Profile retrieves the authenticated listener's profile.
	Profile(ctx context.Context) (*Profile, error)

	// Name returns the provider name (e.g. "Spotify", "Sample").
	Name() string
}

// Profile is the authenticated listener's account profile.
type Profile struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Images      []models.Image `json:"images"`
}
