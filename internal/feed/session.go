package feed

import (
	"github.com/desertthunder/spotibuds/internal/shared"
)

// Session holds the mutable per-tab feed state: the cross-page dedup
// set, the de-clump boundary author, the shuffle seed, and the
// pagination offset. The source of the seen mapping (the persisted
// seen-set) is owned by the caller and handed in on construction and
// reset, keeping this package free of storage concerns.
//
// Session is not safe for concurrent use; callers serialize access.
type Session struct {
	seed      string
	chunkSize int

	globalKeys map[string]struct{}
	lastAuthor string
	offset     int
	epoch      uint64

	seen map[string]int64
}

// NewSession creates a session with the given shuffle seed and chunk
// size. An empty seed gets a random one, fixing the shuffle for the
// session's lifetime. seen maps fingerprints to last-seen epoch millis.
func NewSession(seed string, chunkSize int, seen map[string]int64) *Session {
	if seed == "" {
		seed = shared.GenerateID()
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if seen == nil {
		seen = map[string]int64{}
	}

	return &Session{
		seed:       seed,
		chunkSize:  chunkSize,
		globalKeys: map[string]struct{}{},
		seen:       seen,
	}
}

// Reset clears the dedup set, boundary author, and pagination offset,
// swaps in a freshly loaded seen mapping, and advances the epoch so
// that responses from fetches started before the reset are discarded.
func (s *Session) Reset(seen map[string]int64) {
	s.globalKeys = map[string]struct{}{}
	s.lastAuthor = ""
	s.offset = 0
	s.epoch++
	if seen == nil {
		seen = map[string]int64{}
	}
	s.seen = seen
}

// MarkSeen records a fingerprint as seen for the remainder of the
// session, so later pages demote it. Persistence is the caller's job.
func (s *Session) MarkSeen(fingerprint string, at int64) {
	s.seen[fingerprint] = at
}

// Seed returns the session's shuffle seed.
func (s *Session) Seed() string { return s.seed }

// Offset returns the current pagination offset: the sum of raw batch
// sizes processed so far, not the deduped count.
func (s *Session) Offset() int { return s.offset }

// Epoch returns the current session generation. Callers capture it
// before a fetch and compare after, dropping stale responses.
func (s *Session) Epoch() uint64 { return s.epoch }

// LastAuthor returns the author of the most recently emitted slide.
func (s *Session) LastAuthor() string { return s.lastAuthor }
