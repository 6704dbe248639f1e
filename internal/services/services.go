package services

import (
	"context"

	"github.com/desertthunder/spotibuds/internal/models"
)

// Client defines the operations the SpotiBuds backend exposes to this
// app over REST. Push channels are separate; see the hub package.
type Client interface {
	// FeedSlides fetches one page of raw feed slides for the given
	// identity user. An empty result signals end of feed.
	FeedSlides(ctx context.Context, identityUserID string, limit, skip int) ([]models.Slide, error)

	// Reactions fetches the reaction list for a content identifier.
	Reactions(ctx context.Context, contentID string) ([]models.Reaction, error)

	// SendReaction submits a reaction.
	SendReaction(ctx context.Context, reaction models.Reaction) error

	// RemoveReaction retracts a previously sent reaction.
	RemoveReaction(ctx context.Context, reaction models.Reaction) error

	// Notifications fetches the stored notification backlog.
	Notifications(ctx context.Context, identityUserID string) ([]models.Notification, error)

	// MarkNotificationRead marks a single notification as read.
	MarkNotificationRead(ctx context.Context, notificationID string) error

	// Profile retrieves the authenticated user's profile.
	Profile(ctx context.Context) (*models.UserProfile, error)

	// Name returns the backend name, for logs and CLI output.
	Name() string
}
