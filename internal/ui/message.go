package ui

import (
	"github.com/desertthunder/spotibuds/internal/hub"
	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/tasks"
)

// pageLoadedMsg carries one assembled feed page. endOfFeed is set when
// the backend returned an empty raw page.
type pageLoadedMsg struct {
	slides    []models.Slide
	endOfFeed bool
	err       error
}

// reactionsLoadedMsg carries the reaction list for the selected slide.
type reactionsLoadedMsg struct {
	fingerprint string
	reactions   []models.Reaction
	err         error
}

// reactSentMsg reports the outcome of a reaction send or removal. A
// non-nil err means the optimistic update was rolled back.
type reactSentMsg struct {
	emoji   string
	removed bool
	err     error
}

// hubEventMsg wraps a push event surfaced by the engine.
type hubEventMsg tasks.HubEvent

// HubStateMsg reports a connection state change on a push channel.
// Sent into the program by the hub state listeners wired in cmd.
type HubStateMsg struct {
	Name  string
	State hub.State
	Err   error
}
