package feed

import "github.com/desertthunder/spotibuds/internal/models"

// Declump reorders batch so that no author appears three or more times
// consecutively and the first item does not continue a run started by
// lastAuthor, the author of the final item on the previous page.
// Returns the adjusted batch and the author of its final item, for
// threading into the next call.
//
// Homogeneous batches and batches of fewer than two items are returned
// unchanged; there is nothing to swap with.
func Declump(batch []models.Slide, lastAuthor string) ([]models.Slide, string) {
	if len(batch) == 0 {
		return batch, lastAuthor
	}
	if len(batch) == 1 || homogeneous(batch) {
		return batch, batch[len(batch)-1].AuthorID
	}

	out := make([]models.Slide, len(batch))
	copy(out, batch)

	// Boundary smoothing: the previous page ended with lastAuthor, so
	// pull the earliest differing author to the front.
	if out[0].AuthorID == lastAuthor {
		for j := 1; j < len(out); j++ {
			if out[j].AuthorID != lastAuthor {
				out[0], out[j] = out[j], out[0]
				break
			}
		}
	}

	for i := 2; i < len(out); i++ {
		author := out[i].AuthorID
		if out[i-1].AuthorID != author || out[i-2].AuthorID != author {
			continue
		}
		// Run of three: push the offender forward past the next slide
		// with a different author.
		for j := i + 1; j < len(out); j++ {
			if out[j].AuthorID != author {
				out[i], out[j] = out[j], out[i]
				break
			}
		}
	}

	return out, out[len(out)-1].AuthorID
}

func homogeneous(batch []models.Slide) bool {
	for i := 1; i < len(batch); i++ {
		if batch[i].AuthorID != batch[0].AuthorID {
			return false
		}
	}
	return true
}
