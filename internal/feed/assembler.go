package feed

import (
	"fmt"

	"github.com/desertthunder/spotibuds/internal/models"
)

// Assemble runs one raw page of slides through the ordering pipeline:
//
//  1. Drop slides whose fingerprint was already emitted this session.
//  2. Partition survivors into unseen and seen, preserving relative
//     order within each partition.
//  3. Shuffle the unseen partition with seed sessionSeed:pageOffset.
//  4. Concatenate shuffled unseen ahead of seen.
//  5. De-clump, threading the boundary author from the previous page.
//
// The pagination offset advances by the RAW batch size so that a page
// of all-duplicates still moves the cursor; an empty raw page is the
// backend's end-of-feed signal and leaves all state untouched.
func (s *Session) Assemble(raw []models.Slide) []models.Slide {
	if len(raw) == 0 {
		return nil
	}

	var unseen, seen []models.Slide
	for _, slide := range raw {
		fp := slide.Fingerprint()
		if _, dup := s.globalKeys[fp]; dup {
			continue
		}
		s.globalKeys[fp] = struct{}{}

		if _, ok := s.seen[fp]; ok {
			seen = append(seen, slide)
		} else {
			unseen = append(unseen, slide)
		}
	}

	pageSeed := fmt.Sprintf("%s:%d", s.seed, s.offset)
	s.offset += len(raw)

	ordered := Shuffle(unseen, pageSeed, s.chunkSize)
	ordered = append(ordered, seen...)

	ordered, last := Declump(ordered, s.lastAuthor)
	if len(ordered) > 0 {
		s.lastAuthor = last
	}

	return ordered
}
