// Package web serves the snapshot view as a small server-rendered app.
//
// Routes
//
//	GET /                    → Full snapshot page for a (range, limit) scope
//	GET /api/top/{category}  → One category as JSON for the same scope
//	GET /login               → Redirect to the provider's consent screen
//	GET /callback            → Authorization code redirect target
//
// The app renders whatever [tasks.Engine] returns, so it works identically
// against the live provider and the embedded sample data. Login routes are
// active only when [App.EnableLogin] has been called.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundwrap/internal/auth"
	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/server"
	"github.com/desertthunder/soundwrap/internal/shared"
	"github.com/desertthunder/soundwrap/internal/tasks"
)

//go:embed templates/*.html
var templates embed.FS

// DefaultLimit is the list length served when the request names none.
const DefaultLimit = 20

// maxLimit caps request limits to what the provider pages comfortably.
const maxLimit = 50

// App wires the snapshot engine to HTTP handlers.
//
// The engine may start out nil when browser login is enabled; the callback
// handler swaps in a connected engine once the exchange succeeds.
type App struct {
	logger *log.Logger
	tmpl   *template.Template

	mu       sync.RWMutex
	engine   tasks.Engine
	provider string
	flow     *auth.Flow
	connect  func() (tasks.Engine, string, error)
}

// NewApp creates the web app. provider is the display name shown in the
// page footer.
func NewApp(engine tasks.Engine, provider string, logger *log.Logger) (*App, error) {
	tmpl, err := template.New("index.html").Funcs(template.FuncMap{
		"duration": shared.FormatDuration,
	}).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &App{engine: engine, provider: provider, logger: logger, tmpl: tmpl}, nil
}

// EnableLogin activates the /login and /callback routes. connect is called
// after a successful code exchange to build the engine over the new token.
func (a *App) EnableLogin(flow *auth.Flow, connect func() (tasks.Engine, string, error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.flow = flow
	a.connect = connect
}

// Router builds the app's router with request logging applied.
func (a *App) Router() *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(a.logger))
	router.Handle("GET", "/{$}", http.HandlerFunc(a.handleIndex))
	router.Handle("GET", "/api/top/{category}", http.HandlerFunc(a.handleCategory))
	router.Handle("GET", "/login", http.HandlerFunc(a.handleLogin))
	router.Handle("GET", "/callback", http.HandlerFunc(a.handleCallback))
	return router
}

// currentEngine returns the engine serving requests right now, which may be
// nil before the first successful login.
func (a *App) currentEngine() tasks.Engine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.engine
}

func (a *App) currentFlow() *auth.Flow {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.flow
}

// scope parses the shared range and limit query parameters.
func scope(r *http.Request) (models.TimeRange, int, error) {
	tr, err := models.ParseTimeRange(r.URL.Query().Get("range"))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	limit := DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return "", 0, fmt.Errorf("%w: limit must be a positive integer", shared.ErrInvalidArgument)
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return tr, limit, nil
}

type indexData struct {
	Snapshot *models.Snapshot
	Provider string
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	engine := a.currentEngine()
	if engine == nil {
		a.renderLoginPrompt(w)
		return
	}

	tr, limit, err := scope(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := engine.Load(r.Context(), nil, tr, limit)
	if err != nil {
		a.renderLoadError(w, err)
		return
	}

	a.mu.RLock()
	provider := a.provider
	a.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.tmpl.Execute(w, indexData{Snapshot: snap, Provider: provider}); err != nil {
		a.logger.Error("template render failed", "error", err)
	}
}

func (a *App) handleCategory(w http.ResponseWriter, r *http.Request) {
	engine := a.currentEngine()
	if engine == nil {
		http.Error(w, "Not connected. Visit /login first.", http.StatusUnauthorized)
		return
	}

	category := models.Category(r.PathValue("category"))

	tr, limit, err := scope(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := engine.Load(r.Context(), nil, tr, limit)
	if err != nil {
		a.renderLoadError(w, err)
		return
	}

	var payload any
	switch category {
	case models.CategoryArtists:
		payload = snap.Artists
	case models.CategoryTracks:
		payload = snap.Tracks
	case models.CategoryAlbums:
		payload = snap.Albums
	case models.CategoryGenres:
		payload = snap.Genres
	default:
		http.Error(w, fmt.Sprintf("unknown category %q", category), http.StatusNotFound)
		return
	}

	body, err := shared.MarshalJSON(payload, true)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// handleLogin starts a browser login and redirects to the consent screen.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	flow := a.currentFlow()
	if flow == nil {
		http.NotFound(w, r)
		return
	}

	authURL, err := flow.StartLogin(r.Context())
	if err != nil {
		a.logger.Error("login start failed", "error", err)
		http.Error(w, "Failed to start login.", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback completes the code exchange and swaps in a connected engine.
func (a *App) handleCallback(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	flow, connect := a.flow, a.connect
	a.mu.RUnlock()
	if flow == nil {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	if query.Get("state") != flow.StateParam() {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}
	if query.Get("code") == "" {
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	if err := flow.CompleteCallback(r.Context(), query); err != nil {
		a.logger.Error("token exchange failed", "error", err)
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	engine, provider, err := connect()
	if err != nil {
		a.logger.Error("engine rebuild failed after login", "error", err)
		http.Error(w, "Login succeeded but the provider is unavailable.", http.StatusBadGateway)
		return
	}

	a.mu.Lock()
	a.engine = engine
	a.provider = provider
	a.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderLoginPrompt is the index page shown before any account is connected.
func (a *App) renderLoginPrompt(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head>
    <title>Soundwrap</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        a { color: #1DB954; font-weight: 600; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Soundwrap</h1>
        <p><a href="/login">Connect your Spotify account</a> to see your top music.</p>
    </div>
</body>
</html>
`)
}

// renderLoadError maps engine failures to HTTP statuses.
func (a *App) renderLoadError(w http.ResponseWriter, err error) {
	a.logger.Error("snapshot load failed", "error", err)
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		http.Error(w, "Not authenticated. Run the login command first.", http.StatusUnauthorized)
	case errors.Is(err, shared.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Failed to load snapshot.", http.StatusBadGateway)
	}
}
