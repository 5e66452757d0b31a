// Package server provides HTTP routing, middleware, and the OAuth and JSON
// API handlers for the setlist web application.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] with Go 1.22 method-qualified patterns.
//
// # OAuth Flow
//
// [AuthHandler] implements the web variant of the authorization-code flow:
// /login sets a short-lived http-only state cookie and redirects to the
// upstream authorize URL; /callback validates the state (CSRF protection),
// exchanges the code, and returns tokens to the browser in the URL
// fragment; /refresh-token performs the refresh grant for the browser's
// token manager.
//
// # JSON API
//
// [APIHandler] exposes the three pipeline operations (artist resolution,
// track aggregation, batched playlist writes) over JSON. Upstream failures
// keep their original status code and payload in the response body.
//
// The server holds no per-user state; every request carries the token it
// operates with, so concurrent browser sessions cannot interfere.
package server
