package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundwrap/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// Fallback lifetime when the token endpoint omits expires_in.
	defaultTokenLifetime = time.Hour
)

// State enumerates the login flow's states.
type State int

const (
	Unauthenticated State = iota
	AwaitingRedirect
	AwaitingCallback
	Authenticated
	Failed
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AwaitingRedirect:
		return "awaiting_redirect"
	case AwaitingCallback:
		return "awaiting_callback"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// Flow orchestrates redirect-based login and the code-to-token exchange.
//
// The zero value is not usable; construct with [NewFlow]. Safe for use from
// the callback handler goroutine and the initiating goroutine concurrently.
type Flow struct {
	config *oauth2.Config
	store  CredentialStore
	logger *log.Logger

	mu         sync.Mutex
	state      State
	stateParam string
}

// NewFlow creates a Flow for the configured public OAuth client. PKCE is used
// instead of a client secret.
func NewFlow(cfg shared.SpotifyConfig, store CredentialStore, logger *log.Logger) (*Flow, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: spotify client_id not configured", shared.ErrMissingCredentials)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: credential store is required", shared.ErrInvalidArgument)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"user-top-read"}
	}

	config := &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURI,
		Scopes:      scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   spotifyAuthURL,
			TokenURL:  spotifyTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return &Flow{
		config: config,
		store:  store,
		logger: logger,
		state:  Unauthenticated,
	}, nil
}

// State returns the flow's current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// StateParam returns the anti-CSRF state value generated by the last StartLogin.
func (f *Flow) StateParam() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateParam
}

// StartLogin generates a verifier and challenge, persists the verifier, and
// returns the authorization URL the user's browser should be sent to.
func (f *Flow) StartLogin(ctx context.Context) (string, error) {
	verifier, err := GenerateVerifier(DefaultVerifierBytes)
	if err != nil {
		return "", err
	}

	if err := f.store.SaveVerifier(verifier); err != nil {
		return "", fmt.Errorf("failed to persist verifier: %w", err)
	}

	challenge := DeriveChallenge(verifier)
	stateParam := shared.GenerateID()

	authURL := f.config.AuthCodeURL(stateParam,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", challenge),
	)

	f.mu.Lock()
	f.state = AwaitingRedirect
	f.stateParam = stateParam
	f.mu.Unlock()

	f.logger.Info("login started", "scopes", strings.Join(f.config.Scopes, " "))
	return authURL, nil
}

// CompleteCallback consumes the redirect query parameters and exchanges the
// authorization code for an access token.
//
// A query without a code is not a callback and no-ops. A callback with no
// stored verifier fails with [shared.ErrVerifierConsumed] when the verifier
// was used by an earlier exchange, or [shared.ErrMissingVerifier] when no
// login from this client is in flight.
func (f *Flow) CompleteCallback(ctx context.Context, query url.Values) error {
	code := query.Get("code")
	if code == "" {
		return nil
	}

	verifier, err := f.store.ReadVerifier()
	if err != nil {
		return fmt.Errorf("failed to read verifier: %w", err)
	}
	if verifier == "" {
		f.fail()
		consumed, cerr := f.store.VerifierConsumed()
		if cerr == nil && consumed {
			return fmt.Errorf("%w: callback repeated after exchange", shared.ErrVerifierConsumed)
		}
		return fmt.Errorf("%w: no login in flight for this client", shared.ErrMissingVerifier)
	}

	f.mu.Lock()
	f.state = AwaitingCallback
	f.mu.Unlock()

	token, err := f.config.Exchange(ctx, code,
		oauth2.SetAuthURLParam("code_verifier", verifier),
	)
	if err != nil {
		f.fail()
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return fmt.Errorf("%w: status %d, body: %s", shared.ErrTokenExchange, re.Response.StatusCode, re.Body)
		}
		return fmt.Errorf("%w: %v", shared.ErrTokenExchange, err)
	}

	expiresIn := defaultTokenLifetime
	if !token.Expiry.IsZero() {
		expiresIn = time.Until(token.Expiry)
	}

	if err := f.store.Save(token.AccessToken, expiresIn); err != nil {
		f.fail()
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	if err := f.store.ConsumeVerifier(); err != nil {
		f.logger.Warn("failed to consume verifier", "error", err)
	}

	f.mu.Lock()
	f.state = Authenticated
	f.mu.Unlock()

	f.logger.Info("token exchange complete", "expires_in", expiresIn.Round(time.Second))
	return nil
}

// Token returns the current access token, or [shared.ErrNotAuthenticated]
// when no unexpired credential is stored.
func (f *Flow) Token() (string, error) {
	cred, err := f.store.Read()
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	if cred == nil {
		return "", shared.ErrNotAuthenticated
	}
	return cred.AccessToken, nil
}

// Logout clears the stored credential and any verifier state.
func (f *Flow) Logout() error {
	if err := f.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	if err := f.store.ClearVerifier(); err != nil {
		return fmt.Errorf("failed to clear verifier: %w", err)
	}

	f.mu.Lock()
	f.state = Unauthenticated
	f.stateParam = ""
	f.mu.Unlock()

	return nil
}

func (f *Flow) fail() {
	f.mu.Lock()
	f.state = Failed
	f.mu.Unlock()
}
