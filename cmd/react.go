package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/repositories"
	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/urfave/cli/v3"
)

// buildReaction assembles the wire reaction for a content key from the
// resolved viewer identity.
func (r *Runner) buildReaction(ctx context.Context, contentKey, emoji, toUserID string) (models.Reaction, error) {
	if r.client == nil {
		return models.Reaction{}, fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}

	viewer, err := r.resolveViewer(ctx)
	if err != nil {
		return models.Reaction{}, err
	}

	return models.Reaction{
		Emoji:        emoji,
		FromUserID:   viewer.IdentityUserID,
		FromUserName: viewer.Username,
		ToUserID:     toUserID,
		ContextID:    contentKey,
		CreatedAt:    models.Millis(time.Now()),
	}, nil
}

// recordOutcome appends to the local reaction log, best effort.
func (r *Runner) recordOutcome(contentKey, emoji, toUserID, outcome string) {
	db, err := r.openDatabase()
	if err != nil {
		r.logger.Debug("reaction log unavailable", "error", err)
		return
	}
	if err := repositories.NewReactionLog(db).Record(contentKey, emoji, toUserID, outcome); err != nil {
		r.logger.Debug("failed to record reaction outcome", "error", err)
	}
}

// ReactAdd sends a reaction to a piece of content.
func (r *Runner) ReactAdd(ctx context.Context, cmd *cli.Command) error {
	contentKey := cmd.StringArg("content")
	emoji := cmd.String("emoji")
	toUserID := cmd.String("to")

	if contentKey == "" {
		return fmt.Errorf("%w: content key argument is required", shared.ErrMissingArgument)
	}

	reaction, err := r.buildReaction(ctx, contentKey, emoji, toUserID)
	if err != nil {
		return err
	}

	r.logger.Info("sending reaction", "emoji", emoji, "content", contentKey)

	if err := r.client.SendReaction(ctx, reaction); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	r.recordOutcome(contentKey, emoji, toUserID, repositories.OutcomeSent)

	return r.writePlain("✓ Reacted %s to %s\n", emoji, contentKey)
}

// ReactRemove retracts a previously sent reaction.
func (r *Runner) ReactRemove(ctx context.Context, cmd *cli.Command) error {
	contentKey := cmd.StringArg("content")
	emoji := cmd.String("emoji")
	toUserID := cmd.String("to")

	if contentKey == "" {
		return fmt.Errorf("%w: content key argument is required", shared.ErrMissingArgument)
	}

	reaction, err := r.buildReaction(ctx, contentKey, emoji, toUserID)
	if err != nil {
		return err
	}

	r.logger.Info("removing reaction", "emoji", emoji, "content", contentKey)

	if err := r.client.RemoveReaction(ctx, reaction); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ Removed %s from %s\n", emoji, contentKey)
}

// ReactList fetches and prints the reactions on a piece of content.
func (r *Runner) ReactList(ctx context.Context, cmd *cli.Command) error {
	contentKey := cmd.StringArg("content")
	useJSON := cmd.Bool("json")

	if contentKey == "" {
		return fmt.Errorf("%w: content key argument is required", shared.ErrMissingArgument)
	}
	if r.client == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}

	reactionList, err := r.client.Reactions(ctx, contentKey)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(reactionList, true)
	}

	if len(reactionList) == 0 {
		return r.writePlain("No reactions on %s\n", contentKey)
	}

	r.writePlainHeader(fmt.Sprintf("Reactions on %s", contentKey))
	for _, reaction := range reactionList {
		from := reaction.FromUserName
		if from == "" {
			from = reaction.FromUserID
		}
		r.writePlain("%s  %s\n", reaction.Emoji, from)
	}
	return nil
}

// ReactLog prints locally recorded reaction outcomes.
func (r *Runner) ReactLog(ctx context.Context, cmd *cli.Command) error {
	contentKey := cmd.String("content")

	db, err := r.openDatabase()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	entries, err := repositories.NewReactionLog(db).List(contentKey)
	if err != nil {
		return fmt.Errorf("failed to read reaction log: %w", err)
	}

	if len(entries) == 0 {
		return r.writePlain("Reaction log is empty.\n")
	}

	r.writePlainHeader("Reaction Log")
	for _, entry := range entries {
		marker := "✓"
		if entry.Outcome == repositories.OutcomeRolledBack {
			marker = "✗"
		}
		r.writePlain("%s %s  %s → %s (%s)\n",
			marker, entry.Emoji, entry.ContentKey, entry.ToUserID,
			entry.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
