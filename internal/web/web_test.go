package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/soundwrap/internal/auth"
	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
	"github.com/desertthunder/soundwrap/internal/tasks"
	itesting "github.com/desertthunder/soundwrap/internal/testing"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	engine := tasks.NewSnapshotEngine(&itesting.MockService{}, nil, "fp-web", 5*time.Minute, shared.NewLogger(nil))
	app, err := NewApp(engine, "mock", shared.NewLogger(nil))
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return app
}

// failingEngine returns a fixed error from every load.
type failingEngine struct {
	err error
}

func (f *failingEngine) Load(ctx context.Context, progress chan<- tasks.ProgressUpdate, tr models.TimeRange, limit int) (*models.Snapshot, error) {
	return nil, f.err
}

func (f *failingEngine) Refresh(ctx context.Context, progress chan<- tasks.ProgressUpdate, tr models.TimeRange, limit int) (*models.Snapshot, error) {
	return nil, f.err
}

func TestApp(t *testing.T) {
	t.Run("Index Renders Snapshot", func(t *testing.T) {
		app := newTestApp(t)

		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "Mock Artist") {
			t.Error("expected artist name in page")
		}
		if !strings.Contains(body, "Mock Track") {
			t.Error("expected track name in page")
		}
		if !strings.Contains(body, "1 artist") {
			t.Error("expected genre label in page")
		}
	})

	t.Run("Index Accepts Range And Limit", func(t *testing.T) {
		app := newTestApp(t)

		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/?range=short&limit=5", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for shorthand range, got %d", rec.Code)
		}
	})

	t.Run("Index Rejects Bad Scope", func(t *testing.T) {
		app := newTestApp(t)

		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/?range=weekly", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for bad range, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/?limit=zero", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for bad limit, got %d", rec.Code)
		}
	})

	t.Run("Category JSON", func(t *testing.T) {
		app := newTestApp(t)

		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/top/artists", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if !strings.Contains(rec.Body.String(), "mock-artist") {
			t.Errorf("expected artist payload, got %q", rec.Body.String())
		}
	})

	t.Run("Unknown Category", func(t *testing.T) {
		app := newTestApp(t)

		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/top/podcasts", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Unauthenticated Maps To 401", func(t *testing.T) {
		app, err := NewApp(&failingEngine{err: shared.ErrNotAuthenticated}, "mock", shared.NewLogger(nil))
		if err != nil {
			t.Fatalf("failed to create app: %v", err)
		}

		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Login", func(t *testing.T) {
		newLoginApp := func(t *testing.T) (*App, *auth.Flow) {
			t.Helper()
			flow, err := auth.NewFlow(shared.SpotifyConfig{
				ClientID:    "test_client",
				RedirectURI: "http://127.0.0.1:3000/callback",
			}, itesting.NewMemCredentialStore(), shared.NewLogger(nil))
			if err != nil {
				t.Fatalf("failed to create flow: %v", err)
			}

			app, err := NewApp(nil, "", shared.NewLogger(nil))
			if err != nil {
				t.Fatalf("failed to create app: %v", err)
			}
			app.EnableLogin(flow, func() (tasks.Engine, string, error) {
				engine := tasks.NewSnapshotEngine(&itesting.MockService{}, nil, "fp-web", 5*time.Minute, shared.NewLogger(nil))
				return engine, "mock", nil
			})
			return app, flow
		}

		t.Run("index prompts for login before connecting", func(t *testing.T) {
			app, _ := newLoginApp(t)

			rec := httptest.NewRecorder()
			app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "/login") {
				t.Error("expected login link in prompt page")
			}
		})

		t.Run("category API requires connection", func(t *testing.T) {
			app, _ := newLoginApp(t)

			rec := httptest.NewRecorder()
			app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/top/artists", nil))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})

		t.Run("login redirects to consent screen", func(t *testing.T) {
			app, _ := newLoginApp(t)

			rec := httptest.NewRecorder()
			app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/login", nil))

			if rec.Code != http.StatusFound {
				t.Fatalf("expected 302, got %d", rec.Code)
			}
			location := rec.Header().Get("Location")
			if !strings.Contains(location, "code_challenge") {
				t.Errorf("expected PKCE challenge in redirect, got %q", location)
			}
		})

		t.Run("callback rejects bad state", func(t *testing.T) {
			app, flow := newLoginApp(t)

			rec := httptest.NewRecorder()
			app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/login", nil))
			if flow.StateParam() == "" {
				t.Fatal("expected state to be set after login start")
			}

			rec = httptest.NewRecorder()
			app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/callback?state=wrong&code=abc", nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})

		t.Run("login routes absent without flow", func(t *testing.T) {
			app := newTestApp(t)

			rec := httptest.NewRecorder()
			app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/login", nil))
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
		})
	})

	t.Run("Provider Failure Maps To 502", func(t *testing.T) {
		app, err := NewApp(&failingEngine{err: shared.ErrAPIRequest}, "mock", shared.NewLogger(nil))
		if err != nil {
			t.Fatalf("failed to create app: %v", err)
		}

		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/top/tracks", nil))
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})
}
