// Package ui implements an interactive terminal feed browser using
// bubbletea's Elm architecture.
//
// Two views make up the workflow:
//  1. [FeedView] : Browse assembled feed slides. Moving the cursor
//     marks the focused slide as seen; n loads the next page and r
//     resets the session (pull-to-refresh).
//  2. [ReactionsView] : Inspect a slide's reaction list.
//
// Number keys 1-5 send emoji reactions from either view. Reactions
// apply optimistically; a failed send shows a rollback message in the
// status bar. The status bar also tracks the connection state of both
// push channels, fed by [HubStateMsg] values the cmd layer sends into
// the program.
package ui
