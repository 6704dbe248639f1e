// Package server provides the loopback HTTP infrastructure for the CLI
// login flow.
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
// OAuthHandler implements the OAuth2 authorization code callback flow
// against the SpotiBuds identity service.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Usage
//
// When the user runs `buds auth login`, a temporary HTTP server starts
// on localhost (port from config), the browser opens the identity
// service's consent page, the callback lands here, and the server shuts
// down after delivering the token.
package server
