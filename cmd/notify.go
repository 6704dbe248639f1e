package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/urfave/cli/v3"
)

// NotifyList fetches and prints the stored notification backlog.
func (r *Runner) NotifyList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	unreadOnly := cmd.Bool("unread")

	if r.client == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}

	viewer, err := r.resolveViewer(ctx)
	if err != nil {
		return err
	}

	notifications, err := r.client.Notifications(ctx, viewer.IdentityUserID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if unreadOnly {
		filtered := notifications[:0]
		for _, n := range notifications {
			if !n.Read {
				filtered = append(filtered, n)
			}
		}
		notifications = filtered
	}

	if useJSON {
		return r.writeJSON(notifications, true)
	}

	if len(notifications) == 0 {
		return r.writePlain("No notifications.\n")
	}

	r.writePlainHeader("Notifications")
	for _, n := range notifications {
		marker := "●"
		if n.Read {
			marker = " "
		}
		at := time.UnixMilli(n.CreatedAt).Format("Jan 2 15:04")
		r.writePlain("%s [%s] %s  %s (%s)\n", marker, at, n.Message, n.Type, n.ID)
	}
	return nil
}

// NotifyRead marks a single notification as read.
func (r *Runner) NotifyRead(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: notification id argument is required", shared.ErrMissingArgument)
	}
	if r.client == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.client.MarkNotificationRead(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ Marked %s as read\n", id)
}
