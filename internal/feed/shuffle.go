package feed

import (
	"fmt"

	"github.com/desertthunder/spotibuds/internal/models"
)

// DefaultChunkSize is the window within which slides are permuted.
// Chunk-local shuffling preserves the server's coarse relevance
// ordering while adding local variety.
const DefaultChunkSize = 4

// hash32 computes a 32-bit FNV-1a hash of s. Deterministic and
// platform independent, which keeps shuffle output reproducible for a
// given session seed.
func hash32(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// rng32 is a xorshift32 generator. Not cryptographic; it only needs to
// be stable and reasonably distributed.
type rng32 struct {
	state uint32
}

func newRNG(seed uint32) *rng32 {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return &rng32{state: seed}
}

func (r *rng32) next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// intn returns a value in [0, n).
func (r *rng32) intn(n int) int {
	return int(r.next() % uint32(n))
}

// Shuffle permutes items in consecutive chunks of chunkSize using a
// Fisher-Yates shuffle seeded from hash32(seed + ":" + chunkStart).
// Calling Shuffle twice with identical inputs yields identical output.
// The input slice is not modified.
func Shuffle(items []models.Slide, seed string, chunkSize int) []models.Slide {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	out := make([]models.Slide, len(items))
	copy(out, items)

	for start := 0; start < len(out); start += chunkSize {
		end := start + chunkSize
		if end > len(out) {
			end = len(out)
		}

		rng := newRNG(hash32(fmt.Sprintf("%s:%d", seed, start)))
		chunk := out[start:end]
		for i := len(chunk) - 1; i > 0; i-- {
			j := rng.intn(i + 1)
			chunk[i], chunk[j] = chunk[j], chunk[i]
		}
	}

	return out
}
