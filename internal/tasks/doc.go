// Package tasks orchestrates the feed pipeline and reaction flows on
// top of the backend client.
//
// # Core Operations
//
// The [Engine] interface defines the operations the CLI and TUI layers
// consume:
//
//  1. [Engine.LoadPage] : Fetch one raw page and run it through the
//     ordering pipeline (dedup, unseen-first partition, seeded shuffle,
//     de-clump). Responses from fetches started before a reset are
//     discarded.
//
//  2. [Engine.Reset] : Pull-to-refresh. Clears session state, reloads
//     the persisted seen-set, and advances the session epoch.
//
//  3. [Engine.React] / [Engine.Unreact] : Optimistic reaction flow.
//     The cached list mutates immediately, the send happens after, and
//     a failed send invalidates the cache entry so the next read
//     refetches the server's truth.
//
// # Progress Reporting
//
// Long-running operations (bulk export) emit [ProgressUpdate] values on
// a caller-supplied channel. Updates use select with default so a slow
// consumer never blocks the operation.
//
// # Realtime Events
//
// AttachHubs subscribes the engine to the friends and notifications
// push channels; inbound events surface on the Events channel for the
// watch command and the TUI status line.
package tasks
