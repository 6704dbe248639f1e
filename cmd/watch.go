package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/spotibuds/internal/hub"
	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/desertthunder/spotibuds/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Watch connects to the configured push channels and streams their
// events to the terminal until interrupted.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	onState := func(name string) hub.StateListener {
		return func(state hub.State, err error) {
			if err != nil {
				r.writePlain("[%s] %s: %v\n", name, state, err)
				return
			}
			r.writePlain("[%s] %s\n", name, state)
		}
	}

	friends, notifs := r.hubClients(onState)
	if friends == nil && notifs == nil {
		return fmt.Errorf("%w: no hub endpoints configured", shared.ErrMissingConfig)
	}

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

	if friendsSub == nil && notifsSub == nil {
		return fmt.Errorf("%w: could not connect to any hub", shared.ErrServiceUnavailable)
	}

	engine.AttachHubs(friendsSub, notifsSub, "watch")
	defer engine.DetachHubs()

	r.writePlain("Watching for events. Press Ctrl+C to stop.\n\n")

	for {
		select {
		case <-ctx.Done():
			r.writePlain("\nStopped.\n")
			return nil
		case event := <-engine.Events():
			at := time.Now().Format("15:04:05")
			r.writePlain("%s [%s] %s %v\n", at, event.Source, event.Event, event.Payload)
		}
	}
}
