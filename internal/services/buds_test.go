package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/shared"
	internaltesting "github.com/desertthunder/spotibuds/internal/testing"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func clientWith(rt http.RoundTripper) *BudsClient {
	return NewBudsClient(BudsClientOpts{
		BaseURL:    "http://test.local",
		Token:      "tok",
		HTTPClient: &http.Client{Transport: rt},
		RateLimit:  1000,
	})
}

func TestBudsClient(t *testing.T) {
	ctx := context.Background()

	t.Run("FeedSlides decodes a page", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(200, `[
			{"kind":"recent_song","authorId":"u1","song":{"id":"42","title":"Myth"}},
			{"kind":"top_artists_week","authorId":"u2","artists":["Alvvays"]}
		]`), nil)

		slides, err := clientWith(rt).FeedSlides(ctx, "me", 12, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slides) != 2 {
			t.Fatalf("expected 2 slides, got %d", len(slides))
		}
		if slides[0].Fingerprint() != "recent_song:u1:song:42" {
			t.Errorf("unexpected fingerprint %s", slides[0].Fingerprint())
		}

		req := rt.Requests[0]
		query := req.URL.Query()
		if query.Get("identityUserId") != "me" || query.Get("limit") != "12" || query.Get("skip") != "0" {
			t.Errorf("unexpected query %s", req.URL.RawQuery)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
	})

	t.Run("FeedSlides empty page is end of feed", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(200, `[]`), nil)

		slides, err := clientWith(rt).FeedSlides(ctx, "me", 12, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slides) != 0 {
			t.Errorf("expected empty page, got %d slides", len(slides))
		}
	})

	t.Run("FeedSlides clamps limit", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(200, `[]`), nil)

		if _, err := clientWith(rt).FeedSlides(ctx, "me", 500, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := rt.Requests[0].URL.Query().Get("limit"); got != "50" {
			t.Errorf("expected limit clamped to 50, got %s", got)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		client := NewBudsClient(BudsClientOpts{BaseURL: "http://test.local"})

		_, err := client.FeedSlides(ctx, "me", 12, 0)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("401 maps to ErrNotAuthenticated", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(401, `{}`), nil)

		_, err := clientWith(rt).Profile(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("non-2xx maps to ErrAPIRequest", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(500, `{}`), nil)

		_, err := clientWith(rt).Reactions(ctx, "recent_song:u1:song:42")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("transport failure maps to ErrAPIRequest", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(nil, errors.New("connection refused"))

		_, err := clientWith(rt).Profile(ctx)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("SendReaction posts JSON body", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(201, `{}`), nil)

		reaction := models.Reaction{
			Emoji:       "🔥",
			FromUserID:  "me",
			ToUserID:    "u1",
			ContextType: "recent_song",
		}
		if err := clientWith(rt).SendReaction(ctx, reaction); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := rt.Requests[0]
		if req.Method != http.MethodPost || req.URL.Path != "/reactions" {
			t.Errorf("unexpected request %s %s", req.Method, req.URL.Path)
		}

		body, _ := io.ReadAll(req.Body)
		var decoded models.Reaction
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if decoded.Emoji != "🔥" || decoded.FromUserID != "me" {
			t.Errorf("unexpected body %+v", decoded)
		}
	})

	t.Run("Profile decodes user", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(200, `{"identityUserId":"me","username":"sam"}`), nil)

		profile, err := clientWith(rt).Profile(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if profile.Username != "sam" {
			t.Errorf("unexpected profile %+v", profile)
		}
	})

	t.Run("MarkNotificationRead escapes the id", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(200, `{}`), nil)

		if err := clientWith(rt).MarkNotificationRead(ctx, "n/1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := rt.Requests[0].URL.EscapedPath(); got != "/notifications/n%2F1/read" {
			t.Errorf("unexpected path %s", got)
		}
	})
}
