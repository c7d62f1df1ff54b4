package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/soundwrap/internal/shared"
	"github.com/desertthunder/soundwrap/internal/tasks"
	"github.com/desertthunder/soundwrap/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the snapshot web view on the configured address.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	connect := func() (tasks.Engine, string, error) {
		engine, svc, err := r.engine(db)
		if err != nil {
			return nil, "", err
		}
		return engine, svc.Name(), nil
	}

	var app *web.App
	engine, provider, err := connect()
	switch {
	case err == nil:
		app, err = web.NewApp(engine, provider, r.logger)
		if err != nil {
			return fmt.Errorf("failed to build web app: %w", err)
		}
	case errors.Is(err, shared.ErrNotAuthenticated):
		// Serve anyway; the browser can log in at /login.
		flow, ferr := r.flow(db)
		if ferr != nil {
			return ferr
		}
		app, err = web.NewApp(nil, "", r.logger)
		if err != nil {
			return fmt.Errorf("failed to build web app: %w", err)
		}
		app.EnableLogin(flow, connect)
	default:
		return err
	}

	port := r.config.Server.Port
	if p := cmd.Int("port"); p > 0 {
		port = p
	}

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: app.Router(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("serving snapshot view at http://%v", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	r.writePlain("→ Listening on http://%s (ctrl+c to stop)\n", addr)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	return nil
}
