package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotibuds/internal/hub"
	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/desertthunder/spotibuds/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FeedView ViewState = iota
	ReactionsView
)

// reactionEmojis maps the number keys 1-5 to the reactions they send.
var reactionEmojis = []string{"🔥", "❤️", "👏", "😂", "😮"}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine *tasks.FeedEngine

	width  int
	height int

	feedList  list.Model
	slides    []models.Slide
	endOfFeed bool
	loading   bool

	selected  *models.Slide
	reactions []models.Reaction

	hubStates map[string]hub.State
	status    string
	lastEmoji string
	err       error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.FeedEngine) *Model {
	feedList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	feedList.Title = "SpotiBuds Feed"
	feedList.SetShowHelp(false)

	return &Model{
		ctx:       ctx,
		view:      FeedView,
		engine:    engine,
		feedList:  feedList,
		hubStates: map[string]hub.State{},
		lastEmoji: reactionEmojis[0],
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init loads the first feed page and starts draining hub events.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.loadPage(), m.waitForHubEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.feedList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FeedView:
			return m.handleFeedKeys(msg)
		case ReactionsView:
			return m.handleReactionsKeys(msg)
		}

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.endOfFeed = msg.endOfFeed
		if msg.endOfFeed {
			m.status = "End of feed"
			return m, nil
		}
		m.appendSlides(msg.slides)
		return m, nil

	case reactionsLoadedMsg:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Failed to load reactions: %v", msg.err))
			return m, nil
		}
		m.reactions = msg.reactions
		m.view = ReactionsView
		return m, nil

	case reactSentMsg:
		verb := "Reacted"
		if msg.removed {
			verb = "Removed"
		}
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("%s %s failed, rolled back: %v", verb, msg.emoji, msg.err))
		} else {
			m.status = styles.ok.Render(fmt.Sprintf("%s %s", verb, msg.emoji))
			if !msg.removed {
				m.lastEmoji = msg.emoji
			}
		}
		if m.view == ReactionsView && m.selected != nil {
			return m, m.loadReactions(*m.selected)
		}
		return m, nil

	case hubEventMsg:
		m.status = fmt.Sprintf("%s: %s", msg.Source, describeEvent(tasks.HubEvent(msg)))
		return m, m.waitForHubEvent()

	case HubStateMsg:
		m.hubStates[msg.Name] = msg.State
		if msg.Err != nil {
			m.status = styles.err.Render(fmt.Sprintf("%s channel: %v", msg.Name, msg.Err))
		}
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ReactionsView:
		return m.renderReactions()
	default:
		return m.renderFeed()
	}
}

func (m *Model) handleFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.next):
		if m.loading || m.endOfFeed {
			return m, nil
		}
		m.loading = true
		return m, m.loadPage()

	case key.Matches(msg, m.keys.refresh):
		m.engine.Reset()
		m.slides = nil
		m.endOfFeed = false
		m.loading = true
		m.feedList.SetItems(nil)
		m.status = "Feed refreshed"
		return m, m.loadPage()

	case key.Matches(msg, m.keys.enter):
		if slide := m.selectedSlide(); slide != nil {
			m.selected = slide
			return m, m.loadReactions(*slide)
		}
		return m, nil

	case key.Matches(msg, m.keys.react):
		return m, m.reactToSelected(msg.String(), false)

	case key.Matches(msg, m.keys.unreact):
		return m, m.reactToSelected("", true)
	}

	before := m.feedList.Index()
	var cmd tea.Cmd
	m.feedList, cmd = m.feedList.Update(msg)

	// Moving the cursor counts as viewing the slide.
	if m.feedList.Index() != before {
		if slide := m.selectedSlide(); slide != nil {
			m.engine.Focus(*slide)
		}
	}
	return m, cmd
}

func (m *Model) handleReactionsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = FeedView
		m.reactions = nil
		return m, nil
	case key.Matches(msg, m.keys.react):
		return m, m.reactToSelected(msg.String(), false)
	case key.Matches(msg, m.keys.unreact):
		return m, m.reactToSelected("", true)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == FeedView {
		m.feedList, cmd = m.feedList.Update(msg)
	}
	return m, cmd
}

func (m *Model) appendSlides(slides []models.Slide) {
	m.slides = append(m.slides, slides...)
	items := make([]list.Item, len(m.slides))
	for i, slide := range m.slides {
		items[i] = slideItem{slide: slide}
	}
	m.feedList.SetItems(items)
	if m.width > 0 {
		m.feedList.SetSize(m.width-4, m.height-8)
	}
}

func (m *Model) selectedSlide() *models.Slide {
	item, ok := m.feedList.SelectedItem().(slideItem)
	if !ok {
		return nil
	}
	return &item.slide
}

func (m *Model) loadPage() tea.Cmd {
	return func() tea.Msg {
		slides, err := m.engine.LoadPage(m.ctx)
		if errors.Is(err, shared.ErrEndOfFeed) {
			return pageLoadedMsg{endOfFeed: true}
		}
		if errors.Is(err, shared.ErrStaleResponse) {
			// A refresh superseded this fetch; drop it quietly.
			return pageLoadedMsg{}
		}
		return pageLoadedMsg{slides: slides, err: err}
	}
}

func (m *Model) loadReactions(slide models.Slide) tea.Cmd {
	return func() tea.Msg {
		reactionList, err := m.engine.ReactionsFor(m.ctx, slide)
		return reactionsLoadedMsg{
			fingerprint: slide.Fingerprint(),
			reactions:   reactionList,
			err:         err,
		}
	}
}

func (m *Model) reactToSelected(digit string, remove bool) tea.Cmd {
	slide := m.selected
	if m.view == FeedView {
		slide = m.selectedSlide()
	}
	if slide == nil {
		return nil
	}

	emoji := m.lastEmoji
	if !remove {
		n, err := strconv.Atoi(digit)
		if err != nil || n < 1 || n > len(reactionEmojis) {
			return nil
		}
		emoji = reactionEmojis[n-1]
	}
	target := *slide

	return func() tea.Msg {
		var sendErr error
		if remove {
			sendErr = m.engine.Unreact(m.ctx, target, emoji)
		} else {
			sendErr = m.engine.React(m.ctx, target, emoji)
		}
		return reactSentMsg{emoji: emoji, removed: remove, err: sendErr}
	}
}

func (m *Model) waitForHubEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.engine.Events()
		if !ok {
			return nil
		}
		return hubEventMsg(event)
	}
}

func (m *Model) renderFeed() string {
	var footer strings.Builder

	footer.WriteString(m.statusBar())
	footer.WriteString("\n")
	footer.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))

	return fmt.Sprintf("%s\n\n%s", m.feedList.View(), footer.String())
}

func (m *Model) renderReactions() string {
	if m.selected == nil {
		m.view = FeedView
		return m.renderFeed()
	}

	title := styles.title.Render(m.selected.Title())

	var body strings.Builder
	if len(m.reactions) == 0 {
		body.WriteString(styles.help.Render("No reactions yet. Press 1-5 to react."))
	} else {
		for _, r := range m.reactions {
			who := r.FromUserName
			if who == "" {
				who = r.FromUserID
			}
			body.WriteString(fmt.Sprintf("%s  %s\n", r.Emoji, who))
		}
	}

	helpKeys := []key.Binding{m.keys.react, m.keys.unreact, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s\n%s", title, body.String(), m.statusBar(), helpView)
}

func (m *Model) statusBar() string {
	var parts []string

	for _, name := range []string{"friends", "notifications"} {
		state, ok := m.hubStates[name]
		if !ok {
			continue
		}
		label := fmt.Sprintf("%s:%s", name, state)
		if state == hub.StateConnected {
			parts = append(parts, styles.ok.Render(label))
		} else {
			parts = append(parts, styles.warn.Render(label))
		}
	}

	if m.loading {
		parts = append(parts, "loading...")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}

	return strings.Join(parts, "  ")
}

func describeEvent(event tasks.HubEvent) string {
	switch event.Event {
	case hub.EventMessageReceived:
		return fmt.Sprintf("message from %s", hub.String(event.Payload, "senderId"))
	case hub.EventNewNotification:
		if msg := hub.String(event.Payload, "message"); msg != "" {
			return msg
		}
		return "new notification"
	case hub.EventFriendRequestReceived:
		return fmt.Sprintf("friend request from %s", hub.String(event.Payload, "friendName"))
	case hub.EventFriendRequestAnswered:
		return "friend request answered"
	case hub.EventFriendRemoved:
		return "friend removed"
	default:
		return event.Event
	}
}
