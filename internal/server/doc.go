// Package server provides HTTP routing, middleware, and the OAuth callback
// handler for CLI and web interfaces.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [CallbackHandler] terminates the authorization code + PKCE redirect.
//
// The handler validates the state parameter (CSRF protection), delegates the
// code exchange to [auth.Flow], and sends the result through a channel.
//
// It only processes one callback; a repeated redirect gets a 400 instead of a
// second exchange attempt.
//
// # Current Usage
//
// When the user runs the login command, a temporary HTTP server starts on the
// configured redirect address, handles the callback, and shuts down after the
// token is stored. The web package (internal/web) reuses the router and
// middleware for the snapshot view served by the serve command.
package server
