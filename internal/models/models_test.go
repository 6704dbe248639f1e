package models

import "testing"

func TestFingerprint(t *testing.T) {
	t.Run("song kinds include song id", func(t *testing.T) {
		slide := Slide{
			Kind:     KindRecentSong,
			AuthorID: "u1",
			Song:     &Song{ID: "42", Title: "Song"},
		}

		if got := slide.Fingerprint(); got != "recent_song:u1:song:42" {
			t.Errorf("expected recent_song:u1:song:42, got %s", got)
		}
	})

	t.Run("artist list is order independent", func(t *testing.T) {
		a := Slide{Kind: KindTopArtistsWeek, AuthorID: "u2", Artists: []string{"Beach House", "Alvvays"}}
		b := Slide{Kind: KindTopArtistsWeek, AuthorID: "u2", Artists: []string{"Alvvays", "Beach House"}}

		if a.Fingerprint() != b.Fingerprint() {
			t.Errorf("expected identical fingerprints, got %s and %s", a.Fingerprint(), b.Fingerprint())
		}
	})

	t.Run("sorting does not mutate the slide", func(t *testing.T) {
		slide := Slide{Kind: KindCommonArtists, AuthorID: "u3", Artists: []string{"Zero 7", "Air"}}
		slide.Fingerprint()

		if slide.Artists[0] != "Zero 7" {
			t.Error("fingerprint computation mutated the artist list")
		}
	})

	t.Run("top songs use sorted song ids", func(t *testing.T) {
		slide := Slide{
			Kind:     KindTopSongsWeek,
			AuthorID: "u4",
			Songs:    []Song{{ID: "b"}, {ID: "a"}},
		}

		if got := slide.Fingerprint(); got != "top_songs_week:u4:a,b" {
			t.Errorf("unexpected fingerprint %s", got)
		}
	})

	t.Run("stable across repeated computation", func(t *testing.T) {
		slide := Slide{Kind: KindNowPlaying, AuthorID: "u5", Song: &Song{ID: "9"}}
		if slide.Fingerprint() != slide.Fingerprint() {
			t.Error("fingerprint not stable")
		}
	})

	t.Run("missing song payload", func(t *testing.T) {
		slide := Slide{Kind: KindRecentSong, AuthorID: "u6"}
		if got := slide.Fingerprint(); got != "recent_song:u6:song:" {
			t.Errorf("unexpected fingerprint %s", got)
		}
	})
}

func TestSlideTitle(t *testing.T) {
	slide := Slide{Kind: KindNowPlaying, AuthorID: "u1", AuthorName: "sam", Song: &Song{ID: "1", Title: "Myth"}}
	if got := slide.Title(); got != "sam is playing Myth" {
		t.Errorf("unexpected title %q", got)
	}

	anon := Slide{Kind: KindTopArtistsWeek, AuthorID: "u9"}
	if got := anon.Title(); got != "u9's top artists this week" {
		t.Errorf("unexpected title %q", got)
	}
}
