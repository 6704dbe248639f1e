package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/gorilla/websocket"
)

// State is the connection lifecycle state of a hub client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

const (
	maxReconnectAttempts = 5
	initialBackoff       = time.Second
	maxBackoff           = 30 * time.Second
)

// Event names the server pushes on the two production hubs.
const (
	EventFriendRequestReceived = "FriendRequestReceived"
	EventFriendRequestAnswered = "FriendRequestAnswered"
	EventFriendRemoved         = "FriendRemoved"
	EventMessageReceived       = "MessageReceived"
	EventNewNotification       = "NewNotification"
	EventNotificationRead      = "NotificationRead"
)

// StateListener observes connection state transitions. err is non-nil
// only for terminal failures (reconnect attempts exhausted).
type StateListener func(state State, err error)

// ClientOpts contains configuration for creating a hub Client.
type ClientOpts struct {
	// Name labels the channel in logs ("friends", "notifications").
	Name string
	// URL is the hub's HTTP endpoint; the websocket dial swaps schemes.
	URL string
	// Token is the bearer token used for negotiate and the dial.
	Token string
	// HTTPClient performs the negotiate request.
	HTTPClient *http.Client
	// Dialer performs the websocket dial.
	Dialer *websocket.Dialer
	// Logger receives connection lifecycle logs.
	Logger *log.Logger
	// OnState, when set, observes every state transition.
	OnState StateListener
}

// Client is one SignalR-compatible push channel. Construct with
// NewClient, connect with Start, and always Stop before discarding;
// the read loop and reconnect timer run on background goroutines.
type Client struct {
	name       string
	url        string
	token      string
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     *log.Logger
	onState    StateListener
	registry   *Registry

	backoffBase time.Duration
	backoffCap  time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	state   State
	enabled bool

	wg sync.WaitGroup
}

// NewClient creates a hub client. It does not connect; call Start.
func NewClient(opts ClientOpts) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Client{
		name:       opts.Name,
		url:        opts.URL,
		token:      opts.Token,
		httpClient: opts.HTTPClient,
		dialer:     opts.Dialer,
		logger:     shared.WithLogger(opts.Logger, "hub", opts.Name),
		onState:    opts.OnState,
		registry:   NewRegistry(),

		backoffBase: initialBackoff,
		backoffCap:  maxBackoff,
	}
}

// On registers a handler for a server event under componentID.
// Idempotent per (event, componentID) pair.
func (c *Client) On(event, componentID string, handler Handler) {
	c.registry.On(event, componentID, handler)
}

// Off removes the handler for (event, componentID).
func (c *Client) Off(event, componentID string) {
	c.registry.Off(event, componentID)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start negotiates and connects the channel, then hands the connection
// to a background read loop. Calling Start on a running client is an
// error; Stop first.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.enabled {
		c.mu.Unlock()
		return fmt.Errorf("hub %s already started", c.name)
	}
	c.enabled = true
	c.mu.Unlock()

	c.setState(StateConnecting, nil)

	conn, err := c.connect(ctx)
	if err != nil {
		c.mu.Lock()
		c.enabled = false
		c.mu.Unlock()
		c.setState(StateDisconnected, nil)
		return err
	}

	c.adopt(conn)
	return nil
}

// Stop disables reconnection and closes the connection. Safe to call
// multiple times.
func (c *Client) Stop() {
	c.mu.Lock()
	c.enabled = false
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.wg.Wait()
	c.setState(StateDisconnected, nil)
}

// Invoke sends a non-blocking invocation to the hub, e.g. SendMessage
// or MarkAsRead.
func (c *Client) Invoke(target string, args ...any) error {
	encoded := make([]json.RawMessage, len(args))
	for i, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			return fmt.Errorf("failed to encode argument %d: %w", i, err)
		}
		encoded[i] = data
	}

	frame, err := encodeFrame(hubMessage{Type: typeInvocation, Target: target, Arguments: encoded})
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("%w: cannot invoke %s", shared.ErrHubNotConnected, target)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to invoke %s: %w", target, err)
	}
	return nil
}

// connect performs the negotiate request, websocket dial, and protocol
// handshake, returning an established connection.
func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	negotiated, err := c.negotiate(ctx)
	if err != nil {
		return nil, err
	}

	wsURL := strings.Replace(c.url, "http", "ws", 1)
	connectionID := negotiated.ConnectionToken
	if connectionID == "" {
		connectionID = negotiated.ConnectionID
	}
	if connectionID != "" {
		separator := "?"
		if strings.Contains(wsURL, "?") {
			separator = "&"
		}
		wsURL += separator + "id=" + connectionID
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := c.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: dial %s: %v", shared.ErrServiceUnavailable, c.name, err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	if err := c.handshake(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}

// negotiate asks the backend for a connection id before dialing.
func (c *Client) negotiate(ctx context.Context) (*negotiateResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/negotiate?negotiateVersion=1", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create negotiate request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: negotiate %s: %v", shared.ErrServiceUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: negotiate %s: status %d", shared.ErrServiceUnavailable, c.name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read negotiate response: %w", err)
	}

	var negotiated negotiateResponse
	if err := json.Unmarshal(body, &negotiated); err != nil {
		return nil, fmt.Errorf("failed to decode negotiate response: %w", err)
	}
	return &negotiated, nil
}

// handshake selects the JSON protocol and waits for the server ack.
func (c *Client) handshake(conn *websocket.Conn) error {
	frame, err := encodeFrame(handshakeRequest{Protocol: "json", Version: 1})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to send handshake: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := conn.ReadMessage()
	conn.SetReadDeadline(time.Time{})
	if err != nil {
		return fmt.Errorf("failed to read handshake response: %w", err)
	}

	frames := decodeFrames(data)
	if len(frames) == 0 {
		return fmt.Errorf("empty handshake response")
	}

	var ack handshakeResponse
	if err := json.Unmarshal(frames[0], &ack); err != nil {
		return fmt.Errorf("failed to decode handshake response: %w", err)
	}
	if ack.Error != "" {
		return fmt.Errorf("%w: handshake rejected: %s", shared.ErrAuthFailed, ack.Error)
	}

	return nil
}

// adopt installs an established connection and spawns its read loop.
// A connection established concurrently with Stop is discarded.
func (c *Client) adopt(conn *websocket.Conn) {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateConnected, nil)

	c.wg.Add(1)
	go c.readLoop(conn)
}

// readLoop consumes frames until the connection drops, then triggers
// reconnection unless the client was stopped.
func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.isEnabled() {
				c.logger.Debug("connection lost", "error", err)
				c.wg.Add(1)
				go c.reconnectLoop()
			}
			return
		}

		for _, frame := range decodeFrames(data) {
			c.handleFrame(conn, frame)
		}
	}
}

func (c *Client) handleFrame(conn *websocket.Conn, frame []byte) {
	var msg hubMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		c.logger.Debug("dropping malformed frame", "error", err)
		return
	}

	switch msg.Type {
	case typeInvocation:
		var payload map[string]any
		if len(msg.Arguments) > 0 {
			payload = DecodeArgument(msg.Arguments[0])
		}
		c.registry.Dispatch(msg.Target, payload)
	case typePing:
		if frame, err := encodeFrame(hubMessage{Type: typePing}); err == nil {
			conn.WriteMessage(websocket.TextMessage, frame)
		}
	case typeClose:
		c.logger.Debug("server sent close", "error", msg.Error)
		conn.Close()
	}
}

// reconnectLoop retries the connection with capped exponential backoff
// and gives up permanently after maxReconnectAttempts consecutive
// failures, surfacing ErrHubGaveUp through the state listener.
func (c *Client) reconnectLoop() {
	defer c.wg.Done()

	c.setState(StateReconnecting, nil)

	backoff := c.backoffBase
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		if !c.isEnabled() {
			return
		}

		time.Sleep(backoff)
		if backoff *= 2; backoff > c.backoffCap {
			backoff = c.backoffCap
		}

		if !c.isEnabled() {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		conn, err := c.connect(ctx)
		cancel()

		if err == nil {
			c.logger.Info("reconnected", "attempt", attempt)
			c.adopt(conn)
			return
		}
		c.logger.Warn("reconnect attempt failed", "attempt", attempt, "error", err)
	}

	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()
	c.setState(StateDisconnected, fmt.Errorf("%w: %s after %d attempts", shared.ErrHubGaveUp, c.name, maxReconnectAttempts))
}

func (c *Client) isEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *Client) setState(state State, err error) {
	c.mu.Lock()
	c.state = state
	listener := c.onState
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("channel failed", "error", err)
	}
	if listener != nil {
		listener(state, err)
	}
}
