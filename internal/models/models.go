package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SlideKind identifies the variant of a feed slide.
type SlideKind string

const (
	KindRecentSong     SlideKind = "recent_song"
	KindNowPlaying     SlideKind = "now_playing"
	KindTopArtistsWeek SlideKind = "top_artists_week"
	KindTopSongsWeek   SlideKind = "top_songs_week"
	KindCommonArtists  SlideKind = "common_artists"
)

// Song references a track on the backend.
type Song struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

// Slide is one item of the friend feed. Exactly one payload field is
// populated depending on Kind: Song for the song kinds, Artists for the
// artist-list kinds, Songs for top_songs_week.
type Slide struct {
	Kind       SlideKind `json:"kind"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	PostID     string    `json:"postId,omitempty"`
	Song       *Song     `json:"song,omitempty"`
	Songs      []Song    `json:"songs,omitempty"`
	Artists    []string  `json:"artists,omitempty"`
}

// Fingerprint derives the stable composite key identifying a slide for
// dedup and seen-set purposes: kind:authorID followed by a
// kind-specific discriminator. The computation must yield the same key
// for repeated fetches of the same logical item, so list payloads are
// sorted before joining.
func (s Slide) Fingerprint() string {
	switch s.Kind {
	case KindRecentSong, KindNowPlaying:
		id := ""
		if s.Song != nil {
			id = s.Song.ID
		}
		return fmt.Sprintf("%s:%s:song:%s", s.Kind, s.AuthorID, id)
	case KindTopSongsWeek:
		ids := make([]string, 0, len(s.Songs))
		for _, song := range s.Songs {
			ids = append(ids, song.ID)
		}
		sort.Strings(ids)
		return fmt.Sprintf("%s:%s:%s", s.Kind, s.AuthorID, strings.Join(ids, ","))
	case KindTopArtistsWeek, KindCommonArtists:
		artists := make([]string, len(s.Artists))
		copy(artists, s.Artists)
		sort.Strings(artists)
		return fmt.Sprintf("%s:%s:%s", s.Kind, s.AuthorID, strings.Join(artists, ","))
	default:
		return fmt.Sprintf("%s:%s:%s", s.Kind, s.AuthorID, s.PostID)
	}
}

// Title returns a short human-readable label for CLI and TUI output.
func (s Slide) Title() string {
	switch s.Kind {
	case KindRecentSong:
		if s.Song != nil {
			return fmt.Sprintf("%s listened to %s", s.authorLabel(), s.Song.Title)
		}
	case KindNowPlaying:
		if s.Song != nil {
			return fmt.Sprintf("%s is playing %s", s.authorLabel(), s.Song.Title)
		}
	case KindTopArtistsWeek:
		return fmt.Sprintf("%s's top artists this week", s.authorLabel())
	case KindTopSongsWeek:
		return fmt.Sprintf("%s's top songs this week", s.authorLabel())
	case KindCommonArtists:
		return fmt.Sprintf("artists you share with %s", s.authorLabel())
	}
	return string(s.Kind)
}

func (s Slide) authorLabel() string {
	if s.AuthorName != "" {
		return s.AuthorName
	}
	return s.AuthorID
}

// Reaction is a single emoji reaction attached to a slide.
type Reaction struct {
	Emoji        string `json:"emoji"`
	FromUserID   string `json:"fromUserId"`
	FromUserName string `json:"fromUserName"`
	ToUserID     string `json:"toUserId"`
	ContextType  string `json:"contextType,omitempty"`
	ContextID    string `json:"contextId,omitempty"`
	CreatedAt    int64  `json:"createdAt"` // epoch milliseconds
}

// Notification is a generic push notification from the notifications hub.
type Notification struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	FromUserID string `json:"fromUserId"`
	Message    string `json:"message"`
	Read       bool   `json:"read"`
	CreatedAt  int64  `json:"createdAt"`
}

// FriendRequest is delivered on the friends hub when someone sends or
// answers a friend request.
type FriendRequest struct {
	RequestID  string `json:"requestId"`
	FriendID   string `json:"friendId"`
	FriendName string `json:"friendName"`
	Accepted   bool   `json:"accepted"`
}

// ChatMessage is delivered on the friends hub for direct messages.
type ChatMessage struct {
	MessageID string `json:"messageId"`
	ChatID    string `json:"chatId"`
	SenderID  string `json:"senderId"`
	Content   string `json:"content"`
	SentAt    int64  `json:"sentAt"`
}

// UserProfile is the authenticated user's identity as reported by the backend.
type UserProfile struct {
	IdentityUserID string `json:"identityUserId"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
}

// Millis converts a time to the epoch-millisecond representation used
// across the wire models.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
