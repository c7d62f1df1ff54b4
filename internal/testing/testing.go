// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/services"
)

// MockService is a test double for [services.Service] returning small fixed
// lists.
type MockService struct{}

func (m *MockService) TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]models.Artist, error) {
	return []models.Artist{{ID: "mock-artist", Name: "Mock Artist", Genres: []string{"mock pop"}}}, nil
}

func (m *MockService) TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]models.Track, error) {
	return []models.Track{{ID: "mock-track", Name: "Mock Track", Album: models.Album{ID: "mock-album", Name: "Mock Album"}}}, nil
}

func (m *MockService) TopAlbums(ctx context.Context, tr models.TimeRange, limit int) ([]models.Album, error) {
	return []models.Album{{ID: "mock-album", Name: "Mock Album"}}, nil
}

func (m *MockService) TopGenres(ctx context.Context, tr models.TimeRange, limit int) ([]models.RankedGenre, error) {
	return []models.RankedGenre{{Name: "mock pop", Count: 1, Label: "1 artist"}}, nil
}

func (m *MockService) Profile(ctx context.Context) (*services.Profile, error) {
	return &services.Profile{ID: "mock-user", DisplayName: "Mock User"}, nil
}

func (m *MockService) Name() string { return "mock" }

// MemCredentialStore is an in-memory implementation of the credential store
// contract, including lazy expiry and verifier consumption tracking.
type MemCredentialStore struct {
	Token    string
	Expiry   time.Time
	Verifier string
	Consumed bool
	Now      func() time.Time
}

func NewMemCredentialStore() *MemCredentialStore {
	return &MemCredentialStore{Now: time.Now}
}

func (s *MemCredentialStore) Save(token string, expiresIn time.Duration) error {
	s.Token = token
	s.Expiry = s.Now().Add(expiresIn)
	return nil
}

func (s *MemCredentialStore) Read() (*models.Credential, error) {
	if s.Token == "" {
		return nil, nil
	}
	cred := models.Credential{AccessToken: s.Token, ExpiresAt: s.Expiry}
	if cred.Expired(s.Now()) {
		s.Token = ""
		s.Expiry = time.Time{}
		return nil, nil
	}
	return &cred, nil
}

func (s *MemCredentialStore) Clear() error {
	s.Token = ""
	s.Expiry = time.Time{}
	return nil
}

func (s *MemCredentialStore) SaveVerifier(v string) error {
	s.Verifier = v
	s.Consumed = false
	return nil
}

func (s *MemCredentialStore) ReadVerifier() (string, error) {
	return s.Verifier, nil
}

func (s *MemCredentialStore) ConsumeVerifier() error {
	s.Verifier = ""
	s.Consumed = true
	return nil
}

func (s *MemCredentialStore) ClearVerifier() error {
	s.Verifier = ""
	s.Consumed = false
	return nil
}

func (s *MemCredentialStore) VerifierConsumed() (bool, error) {
	return s.Consumed, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
