// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/spotibuds/internal/models"
)

// MockClient is a test double for the backend client interface. Each
// function field overrides the corresponding method; nil fields return
// zero values.
type MockClient struct {
	FeedSlidesFunc     func(ctx context.Context, identityUserID string, limit, skip int) ([]models.Slide, error)
	ReactionsFunc      func(ctx context.Context, contentID string) ([]models.Reaction, error)
	SendReactionFunc   func(ctx context.Context, reaction models.Reaction) error
	RemoveReactionFunc func(ctx context.Context, reaction models.Reaction) error

	SentReactions    []models.Reaction
	RemovedReactions []models.Reaction
	ReadNotifs       []string
}

func (m *MockClient) FeedSlides(ctx context.Context, identityUserID string, limit, skip int) ([]models.Slide, error) {
	if m.FeedSlidesFunc != nil {
		return m.FeedSlidesFunc(ctx, identityUserID, limit, skip)
	}
	return nil, nil
}

func (m *MockClient) Reactions(ctx context.Context, contentID string) ([]models.Reaction, error) {
	if m.ReactionsFunc != nil {
		return m.ReactionsFunc(ctx, contentID)
	}
	return nil, nil
}

func (m *MockClient) SendReaction(ctx context.Context, reaction models.Reaction) error {
	m.SentReactions = append(m.SentReactions, reaction)
	if m.SendReactionFunc != nil {
		return m.SendReactionFunc(ctx, reaction)
	}
	return nil
}

func (m *MockClient) RemoveReaction(ctx context.Context, reaction models.Reaction) error {
	m.RemovedReactions = append(m.RemovedReactions, reaction)
	if m.RemoveReactionFunc != nil {
		return m.RemoveReactionFunc(ctx, reaction)
	}
	return nil
}

func (m *MockClient) Notifications(ctx context.Context, identityUserID string) ([]models.Notification, error) {
	return nil, nil
}

func (m *MockClient) MarkNotificationRead(ctx context.Context, notificationID string) error {
	m.ReadNotifs = append(m.ReadNotifs, notificationID)
	return nil
}

func (m *MockClient) Profile(ctx context.Context) (*models.UserProfile, error) {
	return &models.UserProfile{IdentityUserID: "mock-user", Username: "mock"}, nil
}

func (m *MockClient) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
	Requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	return m.response, m.err
}

// SequenceRoundTripper serves canned responses in order, repeating the
// final one once the sequence is exhausted.
type SequenceRoundTripper struct {
	Responses []*http.Response
	Requests  []*http.Request
	index     int
}

func (s *SequenceRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.Requests = append(s.Requests, req)
	if s.index >= len(s.Responses) {
		return s.Responses[len(s.Responses)-1], nil
	}
	resp := s.Responses[s.index]
	s.index++
	return resp, nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
