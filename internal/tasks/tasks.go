package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotibuds/internal/feed"
	"github.com/desertthunder/spotibuds/internal/hub"
	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/reactions"
	"github.com/desertthunder/spotibuds/internal/repositories"
	"github.com/desertthunder/spotibuds/internal/services"
	"github.com/desertthunder/spotibuds/internal/shared"
)

// Engine defines the feed operations exposed to the CLI and TUI layers.
type Engine interface {
	// LoadPage fetches the next raw page and returns it assembled.
	// Returns shared.ErrEndOfFeed on an empty raw page and
	// shared.ErrStaleResponse when the session was reset mid-fetch.
	LoadPage(ctx context.Context) ([]models.Slide, error)

	// Reset clears session state and reloads the persisted seen-set.
	Reset()

	// Focus marks a slide as seen, in memory and on disk.
	Focus(slide models.Slide)

	// React sends an emoji reaction optimistically.
	React(ctx context.Context, slide models.Slide, emoji string) error

	// Unreact retracts an emoji reaction optimistically.
	Unreact(ctx context.Context, slide models.Slide, emoji string) error

	// ReactionsFor returns the reaction list for a slide, cached when fresh.
	ReactionsFor(ctx context.Context, slide models.Slide) ([]models.Reaction, error)
}

// SeenTracker persists viewer focus across sessions.
// Implemented by repositories.SeenStore.
type SeenTracker interface {
	Load() map[string]int64
	MarkSeen(fingerprint string) int64
}

// ReactionRecorder logs local reaction attempts and their outcomes.
// Implemented by repositories.ReactionLog.
type ReactionRecorder interface {
	Record(contentKey, emoji, toUserID, outcome string) error
}

// Subscriber is the event registration surface of a hub client.
type Subscriber interface {
	On(event, componentID string, handler hub.Handler)
	Off(event, componentID string)
}

// HubEvent is one normalized push event surfaced to consumers.
type HubEvent struct {
	Source  string // friends or notifications
	Event   string
	Payload map[string]any
}

// FeedEngine implements Engine over the backend client, the session
// ordering pipeline, the seen store, and the reaction cache.
type FeedEngine struct {
	client  services.Client
	session *feed.Session
	seen    SeenTracker
	cache   *reactions.Cache
	rlog    ReactionRecorder
	logger  *log.Logger
	viewer  models.UserProfile
	limit   int

	// mu serializes session and seen-store access; hub callbacks and
	// the UI loop run on separate goroutines.
	mu sync.Mutex

	events chan HubEvent

	hubMu    sync.Mutex
	attached []attachedHub
}

type attachedHub struct {
	client      Subscriber
	componentID string
	events      []string
}

// FeedEngineOpts contains the dependencies for a FeedEngine.
type FeedEngineOpts struct {
	Client    services.Client
	Session   *feed.Session
	Seen      SeenTracker
	Cache     *reactions.Cache
	Log       ReactionRecorder // optional
	Logger    *log.Logger
	Viewer    models.UserProfile
	PageLimit int
}

// NewFeedEngine creates a feed engine with the provided dependencies.
func NewFeedEngine(opts FeedEngineOpts) *FeedEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Cache == nil {
		opts.Cache = reactions.NewCache()
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = 12
	}

	return &FeedEngine{
		client:  opts.Client,
		session: opts.Session,
		seen:    opts.Seen,
		cache:   opts.Cache,
		rlog:    opts.Log,
		logger:  opts.Logger,
		viewer:  opts.Viewer,
		limit:   opts.PageLimit,
		events:  make(chan HubEvent, 64),
	}
}

// LoadPage fetches the next raw page and assembles it. The session
// epoch is captured before the fetch; a reset during the fetch bumps
// the epoch and the response is discarded instead of polluting the
// fresh session.
func (e *FeedEngine) LoadPage(ctx context.Context) ([]models.Slide, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}

	e.mu.Lock()
	epoch := e.session.Epoch()
	skip := e.session.Offset()
	e.mu.Unlock()

	raw, err := e.client.FeedSlides(ctx, e.viewer.IdentityUserID, e.limit, skip)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Epoch() != epoch {
		return nil, fmt.Errorf("%w: feed was reset during fetch", shared.ErrStaleResponse)
	}
	if len(raw) == 0 {
		return nil, shared.ErrEndOfFeed
	}

	return e.session.Assemble(raw), nil
}

// Reset clears the session and reloads the persisted seen-set.
// In-flight LoadPage calls started before the reset will discard their
// responses.
func (e *FeedEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	var seen map[string]int64
	if e.seen != nil {
		seen = e.seen.Load()
	}
	e.session.Reset(seen)
}

// Focus marks a slide as seen. The persisted timestamp also feeds the
// session so later pages of this session demote the slide.
func (e *FeedEngine) Focus(slide models.Slide) {
	fp := slide.Fingerprint()

	e.mu.Lock()
	defer e.mu.Unlock()

	at := models.Millis(time.Now())
	if e.seen != nil {
		at = e.seen.MarkSeen(fp)
	}
	e.session.MarkSeen(fp, at)
}

// ReactionsFor returns the reaction list for a slide, serving from the
// cache when fresh and refetching otherwise.
func (e *FeedEngine) ReactionsFor(ctx context.Context, slide models.Slide) ([]models.Reaction, error) {
	key := slide.Fingerprint()

	if cached, ok := e.cache.Get(key); ok {
		return fromCacheReactions(cached), nil
	}

	fetched, err := e.client.Reactions(ctx, key)
	if err != nil {
		return nil, err
	}

	e.cache.Set(key, toCacheReactions(fetched))
	return fetched, nil
}

// React applies the reaction to the cached list immediately, then sends
// it. A failed send invalidates the cache entry so the next read
// refetches the server's truth, and the rollback is logged.
func (e *FeedEngine) React(ctx context.Context, slide models.Slide, emoji string) error {
	key := slide.Fingerprint()

	meta := reactions.Meta{
		FromUserName: e.viewer.Username,
		ToUserID:     slide.AuthorID,
		ContextType:  string(slide.Kind),
		ContextID:    key,
	}
	e.cache.OptimisticUpdate(key, e.viewer.IdentityUserID, emoji, reactions.ActionAdd, meta)

	reaction := models.Reaction{
		Emoji:        emoji,
		FromUserID:   e.viewer.IdentityUserID,
		FromUserName: e.viewer.Username,
		ToUserID:     slide.AuthorID,
		ContextType:  string(slide.Kind),
		ContextID:    key,
	}
	if err := e.client.SendReaction(ctx, reaction); err != nil {
		e.cache.Invalidate(key)
		e.record(key, emoji, slide.AuthorID, repositories.OutcomeRolledBack)
		return fmt.Errorf("%w: failed to send reaction: %v", shared.ErrAPIRequest, err)
	}

	e.record(key, emoji, slide.AuthorID, repositories.OutcomeSent)
	return nil
}

// Unreact removes the reaction from the cached list immediately, then
// sends the removal, invalidating on failure like React.
func (e *FeedEngine) Unreact(ctx context.Context, slide models.Slide, emoji string) error {
	key := slide.Fingerprint()

	e.cache.OptimisticUpdate(key, e.viewer.IdentityUserID, emoji, reactions.ActionRemove, reactions.Meta{})

	reaction := models.Reaction{
		Emoji:      emoji,
		FromUserID: e.viewer.IdentityUserID,
		ToUserID:   slide.AuthorID,
		ContextID:  key,
	}
	if err := e.client.RemoveReaction(ctx, reaction); err != nil {
		e.cache.Invalidate(key)
		e.record(key, emoji, slide.AuthorID, repositories.OutcomeRolledBack)
		return fmt.Errorf("%w: failed to remove reaction: %v", shared.ErrAPIRequest, err)
	}

	e.record(key, emoji, slide.AuthorID, repositories.OutcomeSent)
	return nil
}

func (e *FeedEngine) record(contentKey, emoji, toUserID, outcome string) {
	if e.rlog == nil {
		return
	}
	if err := e.rlog.Record(contentKey, emoji, toUserID, outcome); err != nil {
		e.logger.Debug("reaction log write failed", "error", err)
	}
}

// AttachHubs subscribes the engine to the push channels under
// componentID. Either argument may be nil. Inbound events surface on
// the Events channel; re-attaching with the same componentID replaces
// the previous handlers.
func (e *FeedEngine) AttachHubs(friends, notifs Subscriber, componentID string) {
	e.hubMu.Lock()
	defer e.hubMu.Unlock()

	if friends != nil {
		e.attach(friends, "friends", componentID, []string{
			hub.EventFriendRequestReceived,
			hub.EventFriendRequestAnswered,
			hub.EventFriendRemoved,
			hub.EventMessageReceived,
		})
	}
	if notifs != nil {
		e.attach(notifs, "notifications", componentID, []string{
			hub.EventNewNotification,
			hub.EventNotificationRead,
		})
	}
}

func (e *FeedEngine) attach(s Subscriber, source, componentID string, events []string) {
	for _, event := range events {
		event := event
		s.On(event, componentID, func(payload map[string]any) {
			e.publish(HubEvent{Source: source, Event: event, Payload: payload})
		})
	}
	e.attached = append(e.attached, attachedHub{client: s, componentID: componentID, events: events})
}

// DetachHubs removes every handler registered through AttachHubs.
// Safe to call without a prior attach.
func (e *FeedEngine) DetachHubs() {
	e.hubMu.Lock()
	defer e.hubMu.Unlock()

	for _, a := range e.attached {
		for _, event := range a.events {
			a.client.Off(event, a.componentID)
		}
	}
	e.attached = nil
}

// Events returns the channel carrying normalized push events. Events
// are dropped, not queued, when the channel is full.
func (e *FeedEngine) Events() <-chan HubEvent {
	return e.events
}

func (e *FeedEngine) publish(event HubEvent) {
	select {
	case e.events <- event:
	default:
	}
}

// sendProgress sends a progress update through the channel without
// blocking. Uses select with default so progress reporting never
// stalls the operation.
func (e *FeedEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func toCacheReactions(in []models.Reaction) []reactions.Reaction {
	out := make([]reactions.Reaction, len(in))
	for i, r := range in {
		out[i] = reactions.Reaction{
			Emoji:        r.Emoji,
			FromUserID:   r.FromUserID,
			FromUserName: r.FromUserName,
			ToUserID:     r.ToUserID,
			ContextType:  r.ContextType,
			ContextID:    r.ContextID,
			CreatedAt:    r.CreatedAt,
		}
	}
	return out
}

func fromCacheReactions(in []reactions.Reaction) []models.Reaction {
	out := make([]models.Reaction, len(in))
	for i, r := range in {
		out[i] = models.Reaction{
			Emoji:        r.Emoji,
			FromUserID:   r.FromUserID,
			FromUserName: r.FromUserName,
			ToUserID:     r.ToUserID,
			ContextType:  r.ContextType,
			ContextID:    r.ContextID,
			CreatedAt:    r.CreatedAt,
		}
	}
	return out
}
