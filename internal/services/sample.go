package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundwrap/internal/aggregate"
	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
)

//go:embed sample_data.json
var sampleData []byte

type sampleFixture struct {
	Profile Profile         `json:"profile"`
	Artists []models.Artist `json:"artists"`
	Tracks  []models.Track  `json:"tracks"`
}

// SampleService implements [Service] from an embedded fixture so the program
// can be exercised end to end without credentials or network access. Results
// are deterministic; the time range rotates the fixture so the three windows
// produce visibly different rankings.
type SampleService struct {
	fixture sampleFixture
	logger  *log.Logger
}

// NewSampleService decodes the embedded fixture. Decoding can only fail if
// the fixture itself is broken, so the error is worth surfacing at startup.
func NewSampleService(logger *log.Logger) (*SampleService, error) {
	var fixture sampleFixture
	if err := json.Unmarshal(sampleData, &fixture); err != nil {
		return nil, fmt.Errorf("failed to decode sample fixture: %w", err)
	}
	return &SampleService{fixture: fixture, logger: logger}, nil
}

func (s *SampleService) Name() string { return "Sample" }

// rangeShift picks a per-window rotation offset.
func rangeShift(timeRange models.TimeRange) int {
	switch timeRange {
	case models.ShortTerm:
		return 0
	case models.MediumTerm:
		return 3
	default:
		return 6
	}
}

// rotate returns a copy of items shifted by the time-range offset.
func rotate[T any](items []T, timeRange models.TimeRange) []T {
	n := len(items)
	if n == 0 {
		return nil
	}
	shift := rangeShift(timeRange) % n
	out := make([]T, 0, n)
	out = append(out, items[shift:]...)
	out = append(out, items[:shift]...)
	return out
}

func clamp[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func (s *SampleService) TopArtists(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Artist, error) {
	if err := validateSampleArgs(timeRange, limit); err != nil {
		return nil, err
	}
	return clamp(rotate(s.fixture.Artists, timeRange), limit), nil
}

func (s *SampleService) TopTracks(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Track, error) {
	if err := validateSampleArgs(timeRange, limit); err != nil {
		return nil, err
	}
	return clamp(rotate(s.fixture.Tracks, timeRange), limit), nil
}

func (s *SampleService) TopAlbums(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Album, error) {
	if err := validateSampleArgs(timeRange, limit); err != nil {
		return nil, err
	}
	return aggregate.TopAlbums(rotate(s.fixture.Tracks, timeRange), limit)
}

func (s *SampleService) TopGenres(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.RankedGenre, error) {
	if err := validateSampleArgs(timeRange, limit); err != nil {
		return nil, err
	}
	return aggregate.TopGenres(rotate(s.fixture.Artists, timeRange), limit)
}

func (s *SampleService) Profile(ctx context.Context) (*Profile, error) {
	profile := s.fixture.Profile
	return &profile, nil
}

func validateSampleArgs(timeRange models.TimeRange, limit int) error {
	if limit < 1 {
		return fmt.Errorf("%w: limit must be at least 1", shared.ErrInvalidArgument)
	}
	if !timeRange.Valid() {
		return fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidArgument, timeRange)
	}
	return nil
}
