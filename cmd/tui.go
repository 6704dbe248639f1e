package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotibuds/internal/hub"
	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/desertthunder/spotibuds/internal/tasks"
	"github.com/desertthunder/spotibuds/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive feed browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/buds-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine)
	p := tea.NewProgram(model)

	// Hub state transitions land in the program as messages so the
	// status bar can show connection health.
	onState := func(name string) hub.StateListener {
		return func(state hub.State, err error) {
			p.Send(ui.HubStateMsg{Name: name, State: state, Err: err})
		}
	}

	friends, notifs := r.hubClients(onState)
	var friendsSub, notifsSub tasks.Subscriber
	if friends != nil {
		if err := friends.Start(ctx); err != nil {
			r.logger.Warn("friends hub unavailable", "error", err)
		} else {
			friendsSub = friends
			defer friends.Stop()
		}
	}
	if notifs != nil {
		if err := notifs.Start(ctx); err != nil {
			r.logger.Warn("notifications hub unavailable", "error", err)
		} else {
			notifsSub = notifs
			defer notifs.Stop()
		}
	}

	if friendsSub != nil || notifsSub != nil {
		engine.AttachHubs(friendsSub, notifsSub, "tui")
		defer engine.DetachHubs()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
