// Spotify Web API implementation of [Service]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundwrap/internal/aggregate"
	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

// maxErrorBody caps how much of an error response is carried in [APIError].
const maxErrorBody = 512

// APIError is a non-2xx response from the Spotify API. It wraps
// [shared.ErrAPIRequest] so callers can match on the category while still
// inspecting the status and response body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error: status %d, body: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return shared.ErrAPIRequest }

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type spotifyArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyArtist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Genres       []string       `json:"genres"`
	Images       []spotifyImage `json:"images"`
	ExternalURLs externalURLs   `json:"external_urls"`
}

type spotifyAlbum struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Images       []spotifyImage     `json:"images"`
	ReleaseDate  string             `json:"release_date"`
	TotalTracks  int                `json:"total_tracks"`
	Artists      []spotifyArtistRef `json:"artists"`
	ExternalURLs externalURLs       `json:"external_urls"`
}

type spotifyTrack struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Album        spotifyAlbum       `json:"album"`
	Artists      []spotifyArtistRef `json:"artists"`
	DurationMS   int                `json:"duration_ms"`
	ExternalURLs externalURLs       `json:"external_urls"`
}

type spotifyProfile struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"`
	Images      []spotifyImage `json:"images"`
}

// paged is the API's offset-based pagination envelope.
type paged[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

func mapImages(in []spotifyImage) []models.Image {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Image, 0, len(in))
	for _, img := range in {
		out = append(out, models.Image{URL: img.URL, Height: img.Height, Width: img.Width})
	}
	return out
}

func mapArtistRefs(in []spotifyArtistRef) []models.ArtistRef {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.ArtistRef, 0, len(in))
	for _, ref := range in {
		out = append(out, models.ArtistRef{ID: ref.ID, Name: ref.Name})
	}
	return out
}

func mapArtist(a spotifyArtist) models.Artist {
	return models.Artist{
		ID:          a.ID,
		Name:        a.Name,
		Genres:      a.Genres,
		Images:      mapImages(a.Images),
		ExternalURL: a.ExternalURLs.Spotify,
	}
}

func mapAlbum(a spotifyAlbum) models.Album {
	return models.Album{
		ID:          a.ID,
		Name:        a.Name,
		Images:      mapImages(a.Images),
		ReleaseDate: a.ReleaseDate,
		TotalTracks: a.TotalTracks,
		Artists:     mapArtistRefs(a.Artists),
		ExternalURL: a.ExternalURLs.Spotify,
	}
}

func mapTrack(t spotifyTrack) models.Track {
	return models.Track{
		ID:          t.ID,
		Name:        t.Name,
		Album:       mapAlbum(t.Album),
		Artists:     mapArtistRefs(t.Artists),
		DurationMS:  t.DurationMS,
		ExternalURL: t.ExternalURLs.Spotify,
	}
}

// SpotifyService implements [Service] against the Spotify Web API with an
// already-obtained bearer token. A [rate.Limiter] paces page requests so
// sequential sampling stays under the API's rate ceiling.
type SpotifyService struct {
	token       string
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	pageSize    int
	trackSample int
	logger      *log.Logger
}

// NewSpotifyService creates a Spotify-backed service. The token must be a
// valid access token; expiry is surfaced per request as [shared.ErrTokenExpired].
func NewSpotifyService(token string, fetch shared.FetchConfig, logger *log.Logger) *SpotifyService {
	pageSize := fetch.PageSize
	if pageSize < 1 || pageSize > 50 {
		pageSize = 50
	}
	trackSample := fetch.TrackSample
	if trackSample < 1 {
		trackSample = aggregate.TrackSampleSize
	}
	delay := time.Duration(fetch.PageDelayMS) * time.Millisecond

	return &SpotifyService{
		token:       token,
		baseURL:     spotifyBaseURL,
		httpClient:  http.DefaultClient,
		limiter:     rate.NewLimiter(rate.Every(delay), 1),
		pageSize:    pageSize,
		trackSample: trackSample,
		logger:      logger,
	}
}

func (s *SpotifyService) Name() string { return "Spotify" }

// get performs an authenticated GET against the API and decodes the response
// into result. The limiter gates every call, so paged loops are paced without
// extra bookkeeping at the call sites.
func (s *SpotifyService) get(ctx context.Context, endpoint string, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: API rejected the access token", shared.ErrTokenExpired)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// fetchPaged walks an offset-paginated endpoint sequentially until totalLimit
// items are collected or the API returns a short page. Each wire item is
// converted as it arrives so callers only see model types.
func fetchPaged[W any, M any](ctx context.Context, s *SpotifyService, path string, timeRange models.TimeRange, totalLimit int, convert func(W) M) ([]M, error) {
	if totalLimit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1", shared.ErrInvalidArgument)
	}
	if !timeRange.Valid() {
		return nil, fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidArgument, timeRange)
	}

	items := make([]M, 0, totalLimit)
	for len(items) < totalLimit {
		pageLimit := s.pageSize
		if remaining := totalLimit - len(items); remaining < pageLimit {
			pageLimit = remaining
		}

		query := url.Values{}
		query.Set("time_range", timeRange.String())
		query.Set("limit", fmt.Sprintf("%d", pageLimit))
		query.Set("offset", fmt.Sprintf("%d", len(items)))

		var page paged[W]
		if err := s.get(ctx, path+"?"+query.Encode(), &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			items = append(items, convert(item))
		}

		// A short page means the listener's history is exhausted.
		if len(page.Items) < pageLimit {
			break
		}
	}
	return items, nil
}

// TopArtists retrieves the listener's top artists, most-listened first.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Artist, error) {
	return fetchPaged(ctx, s, "/me/top/artists", timeRange, limit, mapArtist)
}

// TopTracks retrieves the listener's top tracks, most-listened first.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Track, error) {
	return fetchPaged(ctx, s, "/me/top/tracks", timeRange, limit, mapTrack)
}

// TopAlbums derives top albums from a larger track sample. The sample size is
// configurable; deeper samples make the weighting less sensitive to a handful
// of recent plays.
func (s *SpotifyService) TopAlbums(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Album, error) {
	tracks, err := s.TopTracks(ctx, timeRange, s.trackSample)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("sampled tracks for album ranking", "count", len(tracks), "time_range", timeRange)
	return aggregate.TopAlbums(tracks, limit)
}

// TopGenres derives top genres from a fixed artist sample.
func (s *SpotifyService) TopGenres(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.RankedGenre, error) {
	artists, err := s.TopArtists(ctx, timeRange, aggregate.GenreSampleSize)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("sampled artists for genre ranking", "count", len(artists), "time_range", timeRange)
	return aggregate.TopGenres(artists, limit)
}

// Profile retrieves the authenticated listener's profile.
func (s *SpotifyService) Profile(ctx context.Context) (*Profile, error) {
	var wire spotifyProfile
	if err := s.get(ctx, "/me", &wire); err != nil {
		return nil, err
	}
	return &Profile{
		ID:          wire.ID,
		DisplayName: wire.DisplayName,
		Email:       wire.Email,
		Country:     wire.Country,
		Product:     wire.Product,
		Images:      mapImages(wire.Images),
	}, nil
}
