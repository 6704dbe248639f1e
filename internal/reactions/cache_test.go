package reactions

import (
	"fmt"
	"testing"
	"time"
)

func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	current := start
	now := func() time.Time { return current }
	advance := func(d time.Duration) { current = current.Add(d) }
	return now, advance
}

func TestCache(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("get miss on absent key", func(t *testing.T) {
		cache := NewCache()
		if _, ok := cache.Get("nope"); ok {
			t.Error("expected miss for absent key")
		}
	})

	t.Run("set then get", func(t *testing.T) {
		cache := NewCache()
		cache.Set("k", []Reaction{{Emoji: "🔥", FromUserID: "u1"}})

		got, ok := cache.Get("k")
		if !ok || len(got) != 1 || got[0].Emoji != "🔥" {
			t.Errorf("expected cached reaction list, got %v ok=%v", got, ok)
		}
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		now, advance := fixedClock(base)
		cache := NewCache(WithClock(now), WithTTL(5*time.Minute))

		cache.Set("k", []Reaction{{Emoji: "🎧", FromUserID: "u1"}})
		advance(6 * time.Minute)

		if _, ok := cache.Get("k"); ok {
			t.Error("expected expired entry to miss")
		}
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		cache := NewCache()
		cache.Set("k", []Reaction{{Emoji: "🎵", FromUserID: "u1"}})

		got, _ := cache.Get("k")
		got[0].Emoji = "💥"

		again, _ := cache.Get("k")
		if again[0].Emoji != "🎵" {
			t.Error("cache entry was mutated through the returned slice")
		}
	})

	t.Run("eviction is insertion order, not LRU", func(t *testing.T) {
		cache := NewCache(WithCapacity(100))

		for i := 0; i < 100; i++ {
			cache.Set(fmt.Sprintf("key-%d", i), nil)
		}

		// Touch the oldest key; LRU would protect it, insertion-order
		// eviction does not.
		cache.Get("key-0")

		cache.Set("key-100", nil)

		if _, ok := cache.Get("key-0"); ok {
			t.Error("expected key-0 (insertion-order oldest) to be evicted")
		}
		if _, ok := cache.Get("key-1"); !ok {
			t.Error("expected key-1 to survive")
		}
		if cache.Len() != 100 {
			t.Errorf("expected 100 keys, got %d", cache.Len())
		}
	})

	t.Run("re-set does not duplicate order entry", func(t *testing.T) {
		cache := NewCache(WithCapacity(2))
		cache.Set("a", nil)
		cache.Set("a", nil)
		cache.Set("b", nil)
		cache.Set("c", nil)

		if _, ok := cache.Get("a"); ok {
			t.Error("expected a evicted after capacity exceeded")
		}
		if _, ok := cache.Get("b"); !ok {
			t.Error("expected b to survive")
		}
	})
}

func TestOptimisticUpdate(t *testing.T) {
	t.Run("returns nil without a prior cache hit", func(t *testing.T) {
		cache := NewCache()
		if got := cache.OptimisticUpdate("k", "u1", "🔥", ActionAdd, Meta{}); got != nil {
			t.Errorf("expected nil on cache miss, got %v", got)
		}
		if _, ok := cache.Get("k"); ok {
			t.Error("optimistic update must not fabricate entries")
		}
	})

	t.Run("add appends synthesized reaction", func(t *testing.T) {
		cache := NewCache()
		cache.Set("k", []Reaction{{Emoji: "🎧", FromUserID: "u2"}})

		got := cache.OptimisticUpdate("k", "u1", "🔥", ActionAdd, Meta{FromUserName: "sam", ToUserID: "u2"})

		if len(got) != 2 {
			t.Fatalf("expected 2 reactions, got %d", len(got))
		}
		added := got[1]
		if added.FromUserID != "u1" || added.Emoji != "🔥" || added.FromUserName != "sam" {
			t.Errorf("unexpected synthesized reaction %+v", added)
		}
		if added.CreatedAt == 0 {
			t.Error("expected CreatedAt to be stamped")
		}
	})

	t.Run("add is idempotent per user and emoji", func(t *testing.T) {
		cache := NewCache()
		cache.Set("k", []Reaction{{Emoji: "🔥", FromUserID: "u1"}})

		got := cache.OptimisticUpdate("k", "u1", "🔥", ActionAdd, Meta{})
		if len(got) != 1 {
			t.Errorf("expected no duplicate reaction, got %d entries", len(got))
		}
	})

	t.Run("remove deletes matching record only", func(t *testing.T) {
		cache := NewCache()
		cache.Set("k", []Reaction{
			{Emoji: "🔥", FromUserID: "u1"},
			{Emoji: "🎧", FromUserID: "u1"},
			{Emoji: "🔥", FromUserID: "u2"},
		})

		got := cache.OptimisticUpdate("k", "u1", "🔥", ActionRemove, Meta{})

		if len(got) != 2 {
			t.Fatalf("expected 2 reactions after remove, got %d", len(got))
		}
		for _, r := range got {
			if r.FromUserID == "u1" && r.Emoji == "🔥" {
				t.Error("expected u1's 🔥 reaction removed")
			}
		}
	})

	t.Run("update refreshes the entry timestamp", func(t *testing.T) {
		now, advance := fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		cache := NewCache(WithClock(now), WithTTL(5*time.Minute))

		cache.Set("k", []Reaction{})
		advance(4 * time.Minute)
		cache.OptimisticUpdate("k", "u1", "🔥", ActionAdd, Meta{})
		advance(4 * time.Minute)

		// 8 minutes after the original set, but only 4 after the
		// optimistic update re-stored the list.
		if _, ok := cache.Get("k"); !ok {
			t.Error("expected optimistic update to refresh TTL")
		}
	})

	t.Run("rollback via invalidate", func(t *testing.T) {
		cache := NewCache()
		original := []Reaction{{Emoji: "🎧", FromUserID: "u2"}}
		cache.Set("k", original)

		cache.OptimisticUpdate("k", "u1", "🔥", ActionAdd, Meta{})
		// Simulated send failure: the caller invalidates and falls back
		// to the pre-update list it kept.
		cache.Invalidate("k")

		if _, ok := cache.Get("k"); ok {
			t.Error("expected entry invalidated after failed send")
		}
		if len(original) != 1 {
			t.Error("pre-update list must remain intact for rollback display")
		}
	})
}
