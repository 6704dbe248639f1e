// package feed implements the client-side ordering engine for the
// friend feed: cross-page dedup by fingerprint, unseen-first
// partitioning, a session-seeded deterministic chunk shuffle, and an
// author de-clumping pass that threads state across page boundaries.
//
// The engine never hides content. The seen-set only demotes previously
// encountered slides behind unseen ones within a page.
package feed
