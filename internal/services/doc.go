// Package services defines the [Client] interface for the SpotiBuds
// backend and implements it over its REST API.
//
// # Client Interface
//
// The feed engine, CLI, and TUI talk to the backend exclusively through
// [Client], so tests substitute a mock without network access.
//
// # BudsClient Implementation
//
// [BudsClient] authenticates with a bearer token (obtained via the
// OAuth login flow or imported from a browser session) and applies a
// shared rate limiter across all requests. Endpoints are thin typed
// wrappers: the backend owns pagination semantics, reaction fan-out,
// and notification delivery; this client only shapes requests and
// decodes responses.
//
// An empty slide array from the feed endpoint is the backend's
// end-of-feed signal, not an error.
package services
