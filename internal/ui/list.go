package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotibuds/internal/models"
)

var _ list.Item = slideItem{}

// slideItem wraps [models.Slide] to implement [list.Item].
type slideItem struct {
	slide models.Slide
}

func (i slideItem) FilterValue() string { return i.slide.Title() }
func (i slideItem) Title() string       { return i.slide.Title() }
func (i slideItem) Description() string {
	switch {
	case i.slide.Song != nil && i.slide.Song.Artist != "":
		desc := i.slide.Song.Artist
		if i.slide.Song.Album != "" {
			desc = fmt.Sprintf("%s • %s", desc, i.slide.Song.Album)
		}
		return desc
	case len(i.slide.Songs) > 0:
		return fmt.Sprintf("%d songs", len(i.slide.Songs))
	case len(i.slide.Artists) > 0:
		return strings.Join(i.slide.Artists, ", ")
	default:
		return string(i.slide.Kind)
	}
}
