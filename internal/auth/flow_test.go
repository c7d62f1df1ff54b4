package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/soundwrap/internal/shared"
	itesting "github.com/desertthunder/soundwrap/internal/testing"
)

func newTestFlow(t *testing.T, store CredentialStore) *Flow {
	t.Helper()
	flow, err := NewFlow(shared.SpotifyConfig{
		ClientID:    "test-client",
		RedirectURI: "http://127.0.0.1:3000/callback",
	}, store, shared.NewLogger(nil))
	if err != nil {
		t.Fatalf("failed to create flow: %v", err)
	}
	return flow
}

// tokenEndpoint stands in for the provider's token URL and records the
// exchange request.
func tokenEndpoint(t *testing.T, flow *Flow, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	flow.config.Endpoint.TokenURL = server.URL
}

func TestFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("Requires Client ID", func(t *testing.T) {
		_, err := NewFlow(shared.SpotifyConfig{}, itesting.NewMemCredentialStore(), nil)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("StartLogin", func(t *testing.T) {
		store := itesting.NewMemCredentialStore()
		flow := newTestFlow(t, store)

		authURL, err := flow.StartLogin(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		parsed, err := url.Parse(authURL)
		if err != nil {
			t.Fatalf("failed to parse auth URL: %v", err)
		}
		query := parsed.Query()

		if query.Get("client_id") != "test-client" {
			t.Errorf("expected client_id in URL, got %q", query.Get("client_id"))
		}
		if query.Get("code_challenge_method") != "S256" {
			t.Errorf("expected S256 challenge method, got %q", query.Get("code_challenge_method"))
		}
		if query.Get("response_type") != "code" {
			t.Errorf("expected response_type code, got %q", query.Get("response_type"))
		}
		if query.Get("state") != flow.StateParam() {
			t.Error("expected state parameter to match StateParam")
		}

		if len(store.Verifier) != 128 {
			t.Errorf("expected 128-character verifier persisted, got %d", len(store.Verifier))
		}
		if got := query.Get("code_challenge"); got != DeriveChallenge(store.Verifier) {
			t.Errorf("challenge does not match persisted verifier: %s", got)
		}
		if !strings.Contains(query.Get("scope"), "user-top-read") {
			t.Errorf("expected user-top-read scope, got %q", query.Get("scope"))
		}
		if flow.State() != AwaitingRedirect {
			t.Errorf("expected AwaitingRedirect, got %s", flow.State())
		}
	})

	t.Run("Callback Without Code Is A No-Op", func(t *testing.T) {
		store := itesting.NewMemCredentialStore()
		flow := newTestFlow(t, store)
		if _, err := flow.StartLogin(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if err := flow.CompleteCallback(ctx, url.Values{}); err != nil {
			t.Errorf("expected nil for query without code, got %v", err)
		}
		if store.Verifier == "" {
			t.Error("expected verifier to survive a non-callback query")
		}
	})

	t.Run("Missing Verifier", func(t *testing.T) {
		store := itesting.NewMemCredentialStore()
		flow := newTestFlow(t, store)

		err := flow.CompleteCallback(ctx, url.Values{"code": {"abc"}})
		if !errors.Is(err, shared.ErrMissingVerifier) {
			t.Errorf("expected ErrMissingVerifier, got %v", err)
		}
		if flow.State() != Failed {
			t.Errorf("expected Failed state, got %s", flow.State())
		}
	})

	t.Run("Successful Exchange", func(t *testing.T) {
		store := itesting.NewMemCredentialStore()
		flow := newTestFlow(t, store)
		if _, err := flow.StartLogin(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		verifier := store.Verifier

		var gotVerifier, gotCode string
		tokenEndpoint(t, flow, func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			gotVerifier = r.PostForm.Get("code_verifier")
			gotCode = r.PostForm.Get("code")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`)
		})

		if err := flow.CompleteCallback(ctx, url.Values{"code": {"auth-code"}}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotCode != "auth-code" {
			t.Errorf("expected code forwarded to token endpoint, got %q", gotCode)
		}
		if gotVerifier != verifier {
			t.Error("expected stored verifier sent as code_verifier")
		}
		if store.Token != "fresh-token" {
			t.Errorf("expected token persisted, got %q", store.Token)
		}
		if until := time.Until(store.Expiry); until < 55*time.Minute || until > 65*time.Minute {
			t.Errorf("expected roughly one hour of validity, got %s", until)
		}
		if store.Verifier != "" || !store.Consumed {
			t.Error("expected verifier consumed after exchange")
		}
		if flow.State() != Authenticated {
			t.Errorf("expected Authenticated, got %s", flow.State())
		}

		token, err := flow.Token()
		if err != nil || token != "fresh-token" {
			t.Errorf("expected stored token back, got %q (%v)", token, err)
		}
	})

	t.Run("Repeated Callback After Exchange", func(t *testing.T) {
		store := itesting.NewMemCredentialStore()
		flow := newTestFlow(t, store)
		if _, err := flow.StartLogin(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tokenEndpoint(t, flow, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`)
		})

		if err := flow.CompleteCallback(ctx, url.Values{"code": {"auth-code"}}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		err := flow.CompleteCallback(ctx, url.Values{"code": {"auth-code"}})
		if !errors.Is(err, shared.ErrVerifierConsumed) {
			t.Errorf("expected ErrVerifierConsumed, got %v", err)
		}
	})

	t.Run("Failed Exchange Carries Status And Body", func(t *testing.T) {
		store := itesting.NewMemCredentialStore()
		flow := newTestFlow(t, store)
		if _, err := flow.StartLogin(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tokenEndpoint(t, flow, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Invalid authorization code"}`)
		})

		err := flow.CompleteCallback(ctx, url.Values{"code": {"bad-code"}})
		if !errors.Is(err, shared.ErrTokenExchange) {
			t.Fatalf("expected ErrTokenExchange, got %v", err)
		}
		if !strings.Contains(err.Error(), "400") {
			t.Errorf("expected status in message, got %q", err)
		}
		if !strings.Contains(err.Error(), "invalid_grant") {
			t.Errorf("expected response body in message, got %q", err)
		}
		if store.Token != "" {
			t.Error("expected no credential persisted after failed exchange")
		}
	})

	t.Run("Token When Unauthenticated", func(t *testing.T) {
		flow := newTestFlow(t, itesting.NewMemCredentialStore())

		_, err := flow.Token()
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		store := itesting.NewMemCredentialStore()
		store.Save("old-token", time.Hour)
		store.SaveVerifier("stale-verifier")
		flow := newTestFlow(t, store)

		if err := flow.Logout(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if store.Token != "" || store.Verifier != "" {
			t.Error("expected credential and verifier cleared")
		}
		if flow.State() != Unauthenticated {
			t.Errorf("expected Unauthenticated, got %s", flow.State())
		}
	})
}
