package server

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/soundwrap/internal/auth"
)

// CallbackResult contains the outcome of one OAuth authorization flow.
type CallbackResult struct {
	err error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the authorization code redirect for the PKCE login
// flow. Implements the Handler interface for registration with a Router.
//
// The code exchange itself lives in [auth.Flow]; this handler owns the HTTP
// concerns: state validation, single-use guarding, and the page shown in the
// user's browser.
type CallbackHandler struct {
	flow        *auth.Flow
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler bound to an in-flight login.
func NewCallbackHandler(flow *auth.Flow) *CallbackHandler {
	return &CallbackHandler{
		flow:       flow,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Validates the state parameter, hands the query to the flow for the code
// exchange, and sends the result through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if state := query.Get("state"); state != h.flow.StateParam() {
		err := fmt.Errorf("invalid state parameter")
		h.Send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if query.Get("code") == "" {
		err := authDeniedError(query)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	if err := h.flow.CompleteCallback(r.Context(), query); err != nil {
		h.Send(CallbackResult{err: err})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(CallbackResult{})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// authDeniedError describes a redirect that carried no code, typically the
// user declining the consent screen.
func authDeniedError(query url.Values) error {
	errParam := query.Get("error")
	errDesc := query.Get("error_description")
	if errParam == "" && errDesc == "" {
		return fmt.Errorf("authorization failed: redirect carried no code")
	}
	return fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}
