package hub

import "testing"

func TestRegistry(t *testing.T) {
	t.Run("dispatches to every component", func(t *testing.T) {
		r := NewRegistry()
		var sidebar, toast int
		r.On("NewNotification", "sidebar", func(map[string]any) { sidebar++ })
		r.On("NewNotification", "toast", func(map[string]any) { toast++ })

		r.Dispatch("NewNotification", nil)

		if sidebar != 1 || toast != 1 {
			t.Errorf("sidebar=%d toast=%d", sidebar, toast)
		}
	})

	t.Run("re-registering replaces the previous handler", func(t *testing.T) {
		r := NewRegistry()
		var old, replacement int
		r.On("MessageReceived", "chat", func(map[string]any) { old++ })
		r.On("MessageReceived", "chat", func(map[string]any) { replacement++ })

		r.Dispatch("MessageReceived", nil)

		if old != 0 {
			t.Errorf("stale handler fired %d times", old)
		}
		if replacement != 1 {
			t.Errorf("replacement fired %d times", replacement)
		}
		if got := r.Count("MessageReceived"); got != 1 {
			t.Errorf("expected 1 handler, got %d", got)
		}
	})

	t.Run("off removes only the named pair", func(t *testing.T) {
		r := NewRegistry()
		var kept int
		r.On("FriendRemoved", "list", func(map[string]any) { kept++ })
		r.On("FriendRemoved", "badge", func(map[string]any) { t.Error("removed handler fired") })

		r.Off("FriendRemoved", "badge")
		r.Dispatch("FriendRemoved", nil)

		if kept != 1 {
			t.Errorf("surviving handler fired %d times", kept)
		}
	})

	t.Run("off is a no-op for absent pairs", func(t *testing.T) {
		r := NewRegistry()
		r.Off("NoSuchEvent", "nobody")
		if got := r.Count("NoSuchEvent"); got != 0 {
			t.Errorf("expected 0 handlers, got %d", got)
		}
	})

	t.Run("nil handlers are ignored", func(t *testing.T) {
		r := NewRegistry()
		r.On("NewNotification", "sidebar", nil)
		if got := r.Count("NewNotification"); got != 0 {
			t.Errorf("expected 0 handlers, got %d", got)
		}
	})

	t.Run("handler may unregister itself during dispatch", func(t *testing.T) {
		r := NewRegistry()
		var fired int
		r.On("NotificationRead", "once", func(map[string]any) {
			fired++
			r.Off("NotificationRead", "once")
		})

		r.Dispatch("NotificationRead", nil)
		r.Dispatch("NotificationRead", nil)

		if fired != 1 {
			t.Errorf("one-shot handler fired %d times", fired)
		}
	})
}
