package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/gorilla/websocket"
)

// fakeHub is an in-process SignalR-compatible endpoint. It answers
// negotiate, completes the JSON protocol handshake, records inbound
// invocations, and can push events to the most recent connection.
type fakeHub struct {
	t        *testing.T
	server   *httptest.Server
	upgrader websocket.Upgrader
	received chan hubMessage

	mu            sync.Mutex
	conns         []*websocket.Conn
	connCount     int
	dropFirst     bool
	failNegotiate bool
}

func newFakeHub(t *testing.T) *fakeHub {
	t.Helper()

	f := &fakeHub{t: t, received: make(chan hubMessage, 8)}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(func() {
		f.dropAll()
		f.server.CloseClientConnections()
		f.server.Close()
	})
	return f
}

// dropAll closes every recorded server-side connection. Upgraded
// connections are hijacked from the httptest server, which stops
// tracking them, so CloseClientConnections cannot reach them.
func (f *fakeHub) dropAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conn := range f.conns {
		conn.Close()
	}
	f.conns = nil
}

func (f *fakeHub) handle(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/negotiate") {
		f.mu.Lock()
		fail := f.failNegotiate
		f.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"connectionId":"test-conn"}`)
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	if _, _, err := conn.ReadMessage(); err != nil {
		return
	}
	conn.WriteMessage(websocket.TextMessage, append([]byte("{}"), recordSeparator))

	f.mu.Lock()
	f.connCount++
	first := f.connCount == 1
	f.conns = append(f.conns, conn)
	drop := f.dropFirst && first
	f.mu.Unlock()

	if drop {
		conn.Close()
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		for _, frame := range decodeFrames(data) {
			var msg hubMessage
			if json.Unmarshal(frame, &msg) == nil {
				select {
				case f.received <- msg:
				default:
				}
			}
		}
	}
}

func (f *fakeHub) push(target string, payload any) {
	f.t.Helper()

	arg, err := json.Marshal(payload)
	if err != nil {
		f.t.Fatalf("unexpected error: %v", err)
	}
	frame, err := encodeFrame(hubMessage{Type: typeInvocation, Target: target, Arguments: []json.RawMessage{arg}})
	if err != nil {
		f.t.Fatalf("unexpected error: %v", err)
	}

	f.mu.Lock()
	conn := f.conns[len(f.conns)-1]
	f.mu.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		f.t.Fatalf("unexpected error: %v", err)
	}
}

func newTestClient(t *testing.T, url string, onState StateListener) *Client {
	t.Helper()

	c := NewClient(ClientOpts{Name: "friends", URL: url, Token: "test-token", OnState: onState})
	c.backoffBase = time.Millisecond
	c.backoffCap = 5 * time.Millisecond
	return c
}

func TestClientStart(t *testing.T) {
	t.Run("connects and dispatches server events", func(t *testing.T) {
		hub := newFakeHub(t)
		c := newTestClient(t, hub.server.URL, nil)

		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer c.Stop()

		if got := c.State(); got != StateConnected {
			t.Fatalf("expected connected, got %v", got)
		}

		got := make(chan map[string]any, 1)
		c.On(EventNewNotification, "test", func(p map[string]any) { got <- p })

		hub.push(EventNewNotification, map[string]any{"NotificationId": 7, "Message": "new follower"})

		select {
		case payload := <-got:
			if Int64(payload, "notificationId") != 7 {
				t.Errorf("payload not normalized: %v", payload)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	})

	t.Run("fails when negotiate is rejected", func(t *testing.T) {
		hub := newFakeHub(t)
		hub.failNegotiate = true
		c := newTestClient(t, hub.server.URL, nil)

		err := c.Start(context.Background())
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if got := c.State(); got != StateDisconnected {
			t.Errorf("expected disconnected, got %v", got)
		}
	})

	t.Run("double start is an error", func(t *testing.T) {
		hub := newFakeHub(t)
		c := newTestClient(t, hub.server.URL, nil)

		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer c.Stop()

		if err := c.Start(context.Background()); err == nil {
			t.Error("expected an error on second start")
		}
	})
}

func TestClientInvoke(t *testing.T) {
	t.Run("sends invocations to the hub", func(t *testing.T) {
		hub := newFakeHub(t)
		c := newTestClient(t, hub.server.URL, nil)

		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer c.Stop()

		if err := c.Invoke("SendMessage", "u2", "hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		select {
		case msg := <-hub.received:
			if msg.Type != typeInvocation || msg.Target != "SendMessage" {
				t.Errorf("received %+v", msg)
			}
			if len(msg.Arguments) != 2 || string(msg.Arguments[0]) != `"u2"` {
				t.Errorf("arguments: %v", msg.Arguments)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for invocation")
		}
	})

	t.Run("fails when not connected", func(t *testing.T) {
		c := newTestClient(t, "http://127.0.0.1:0", nil)
		if err := c.Invoke("MarkAsRead", 1); !errors.Is(err, shared.ErrHubNotConnected) {
			t.Errorf("expected ErrHubNotConnected, got %v", err)
		}
	})
}

func TestClientReconnect(t *testing.T) {
	t.Run("recovers after a dropped connection", func(t *testing.T) {
		hub := newFakeHub(t)
		hub.dropFirst = true

		states := make(chan State, 16)
		c := newTestClient(t, hub.server.URL, func(s State, err error) { states <- s })

		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer c.Stop()

		sawReconnecting := false
		deadline := time.After(5 * time.Second)
		for {
			select {
			case s := <-states:
				if s == StateReconnecting {
					sawReconnecting = true
				}
				if s == StateConnected && sawReconnecting {
					return
				}
			case <-deadline:
				t.Fatal("timed out waiting for reconnection")
			}
		}
	})

	t.Run("gives up after exhausting attempts", func(t *testing.T) {
		hub := newFakeHub(t)

		type transition struct {
			state State
			err   error
		}
		states := make(chan transition, 32)
		c := newTestClient(t, hub.server.URL, func(s State, err error) { states <- transition{s, err} })

		if err := c.Start(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		hub.mu.Lock()
		hub.failNegotiate = true
		hub.mu.Unlock()
		hub.dropAll()

		deadline := time.After(5 * time.Second)
		for {
			select {
			case tr := <-states:
				if tr.state == StateDisconnected && tr.err != nil {
					if !errors.Is(tr.err, shared.ErrHubGaveUp) {
						t.Errorf("expected ErrHubGaveUp, got %v", tr.err)
					}
					return
				}
			case <-deadline:
				t.Fatal("timed out waiting for terminal state")
			}
		}
	})
}

func TestClientStop(t *testing.T) {
	hub := newFakeHub(t)
	c := newTestClient(t, hub.server.URL, nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Stop()

	if got := c.State(); got != StateDisconnected {
		t.Errorf("expected disconnected, got %v", got)
	}
	if err := c.Invoke("SendMessage", "u2", "late"); !errors.Is(err, shared.ErrHubNotConnected) {
		t.Errorf("expected ErrHubNotConnected, got %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if got := c.State(); got != StateDisconnected {
		t.Errorf("client reconnected after stop: %v", got)
	}

	c.Stop()
}
