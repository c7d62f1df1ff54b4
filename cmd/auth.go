package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/soundwrap/internal/repositories"
	"github.com/desertthunder/soundwrap/internal/server"
	"github.com/desertthunder/soundwrap/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the authorization code + PKCE flow.
//
// Starts a local HTTP server for the redirect, opens the browser to Spotify's
// consent screen, and waits for the callback to complete the token exchange.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.config.DemoMode {
		return r.writePlain("Demo mode is enabled; no login needed. Run 'sw top' directly.\n")
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	flow, err := r.flow(db)
	if err != nil {
		return err
	}

	authURL, err := flow.StartLogin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start login: %w", err)
	}

	handler := server.NewCallbackHandler(flow)
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(handler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	token, err := flow.Token()
	if err != nil {
		return fmt.Errorf("no token stored after exchange: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token stored (fingerprint %s)\n\n", shared.TokenFingerprint(token))
	r.writePlain("You can now use: sw top\n")

	return nil
}

// AuthStatus reports whether an unexpired access token is stored.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.config.DemoMode {
		r.writePlain("Demo mode: ✓ Using the bundled sample library\n")
		return nil
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	repo := repositories.NewCredentialRepository(db)
	cred, err := repo.Read()
	if err != nil {
		return fmt.Errorf("failed to read credential: %w", err)
	}

	if cred == nil {
		r.writePlain("Authentication: ✗ Not authenticated\n")
		r.writePlain("Run 'sw auth login' to authorize with Spotify.\n")
		return nil
	}

	r.writePlain("Authentication: ✓ Authenticated\n")
	r.writePlain("Token fingerprint: %s\n", shared.TokenFingerprint(cred.AccessToken))
	r.writePlain("Expires: %s\n", cred.ExpiresAt.Local().Format(time.RFC1123))

	svc, _, err := r.service(db)
	if err != nil {
		// The status above already printed; the profile line is best effort.
		r.logger.Warn("failed to build service for profile lookup", "error", err)
		return nil
	}
	if profile, err := svc.Profile(ctx); err == nil {
		r.writePlain("Account: %s", profile.DisplayName)
		if profile.Product != "" {
			r.writePlain(" (%s)", profile.Product)
		}
		r.writePlain("\n")
	} else {
		r.logger.Warn("failed to fetch profile", "error", err)
	}
	return nil
}

// AuthLogout discards the stored credential and drops cached snapshots.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	flow, err := r.flow(db)
	if err != nil {
		return err
	}

	if err := flow.Logout(); err != nil {
		return err
	}

	if err := repositories.NewSnapshotRepository(db).Clear(); err != nil {
		r.logger.Warn("failed to clear snapshot cache", "error", err)
	}

	r.writePlain("✓ Logged out\n")
	return nil
}

// requireLogin translates a missing-credential error into a friendly hint.
func requireLogin(err error) error {
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return fmt.Errorf("%w: run 'sw auth login' first", err)
	}
	return err
}
