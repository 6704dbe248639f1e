package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// SeenSlotKey is the kv slot holding the seen-set blob, a JSON
	// object mapping content fingerprints to epoch-millisecond
	// timestamps.
	SeenSlotKey = "feed_seen_v1"

	// DefaultSeenTTL is how long a slide counts as seen.
	DefaultSeenTTL = 72 * time.Hour
)

// SeenStore persists the mapping of content fingerprints to the time
// the viewer last had them focused. It is the single source of truth
// for "already encountered" and is used only to influence ordering,
// never to hide content.
type SeenStore struct {
	db      *sql.DB
	logger  *log.Logger
	ttl     time.Duration
	entries map[string]int64
	now     func() time.Time
}

// SeenOption configures a SeenStore.
type SeenOption func(*SeenStore)

// WithSeenTTL overrides the default 72h TTL.
func WithSeenTTL(ttl time.Duration) SeenOption {
	return func(s *SeenStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSeenClock overrides the time source, for tests.
func WithSeenClock(now func() time.Time) SeenOption {
	return func(s *SeenStore) {
		s.now = now
	}
}

// NewSeenStore creates a seen store over the given database.
func NewSeenStore(db *sql.DB, logger *log.Logger, opts ...SeenOption) *SeenStore {
	s := &SeenStore{
		db:      db,
		logger:  logger,
		ttl:     DefaultSeenTTL,
		entries: map[string]int64{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted blob, drops entries older than the TTL, and
// returns the surviving mapping. Missing or corrupt data yields an
// empty mapping; Load never fails hard.
func (s *SeenStore) Load() map[string]int64 {
	s.entries = map[string]int64{}

	raw, err := getSlot(s.db, SeenSlotKey)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Debug("seen-set load failed, starting empty", "error", err)
		}
		return s.snapshot()
	}

	var stored map[string]int64
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Debug("seen-set blob corrupt, starting empty", "error", err)
		return s.snapshot()
	}

	cutoff := s.now().Add(-s.ttl).UnixMilli()
	for fp, at := range stored {
		if at >= cutoff {
			s.entries[fp] = at
		}
	}

	return s.snapshot()
}

// MarkSeen stamps fingerprint with the current time and persists the
// whole mapping. Persistence failures are swallowed; the in-memory
// mapping stays authoritative for the session either way.
func (s *SeenStore) MarkSeen(fingerprint string) int64 {
	at := s.now().UnixMilli()
	s.entries[fingerprint] = at

	blob, err := json.Marshal(s.entries)
	if err != nil {
		s.logger.Debug("seen-set marshal failed", "error", err)
		return at
	}
	if err := putSlot(s.db, SeenSlotKey, string(blob)); err != nil {
		s.logger.Debug("seen-set persist failed", "error", err)
	}

	return at
}

// snapshot copies the live mapping so callers can't alias internal state.
func (s *SeenStore) snapshot() map[string]int64 {
	out := make(map[string]int64, len(s.entries))
	for fp, at := range s.entries {
		out[fp] = at
	}
	return out
}
