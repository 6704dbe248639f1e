// SpotiBuds REST API implementation of [Client].
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/shared"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.spotibuds.app"

// BudsClient implements [Client] against the SpotiBuds REST API.
type BudsClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// BudsClientOpts contains configuration for creating a BudsClient.
type BudsClientOpts struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	RateLimit  float64 // requests per second, 0 = default of 5
}

// NewBudsClient creates a client for the SpotiBuds backend.
func NewBudsClient(opts BudsClientOpts) *BudsClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	return &BudsClient{
		baseURL:    opts.BaseURL,
		token:      opts.Token,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), int(opts.RateLimit)),
	}
}

// SetToken replaces the bearer token, after a fresh login.
func (c *BudsClient) SetToken(token string) {
	c.token = token
}

func (c *BudsClient) Name() string {
	return "SpotiBuds"
}

// doRequest performs an authenticated, rate-limited HTTP request
// against the API and decodes the JSON response into result.
func (c *BudsClient) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if c.token == "" {
		return fmt.Errorf("%w: no access token, run `buds auth login`", shared.ErrNotAuthenticated)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status 401", shared.ErrNotAuthenticated)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// FeedSlides fetches one page of raw feed slides.
func (c *BudsClient) FeedSlides(ctx context.Context, identityUserID string, limit, skip int) ([]models.Slide, error) {
	if limit <= 0 {
		limit = 12
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/feed/slides?identityUserId=%s&limit=%d&skip=%d",
		url.QueryEscape(identityUserID), limit, skip)

	var slides []models.Slide
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &slides); err != nil {
		return nil, err
	}
	return slides, nil
}

// Reactions fetches the reaction list for a content identifier.
func (c *BudsClient) Reactions(ctx context.Context, contentID string) ([]models.Reaction, error) {
	endpoint := fmt.Sprintf("/reactions?contentId=%s", url.QueryEscape(contentID))

	var reactions []models.Reaction
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &reactions); err != nil {
		return nil, err
	}
	return reactions, nil
}

// SendReaction submits a reaction.
func (c *BudsClient) SendReaction(ctx context.Context, reaction models.Reaction) error {
	return c.doRequest(ctx, http.MethodPost, "/reactions", reaction, nil)
}

// RemoveReaction retracts a previously sent reaction.
func (c *BudsClient) RemoveReaction(ctx context.Context, reaction models.Reaction) error {
	return c.doRequest(ctx, http.MethodPost, "/reactions/remove", reaction, nil)
}

// Notifications fetches the stored notification backlog.
func (c *BudsClient) Notifications(ctx context.Context, identityUserID string) ([]models.Notification, error) {
	endpoint := fmt.Sprintf("/notifications?identityUserId=%s", url.QueryEscape(identityUserID))

	var notifications []models.Notification
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead marks a single notification as read.
func (c *BudsClient) MarkNotificationRead(ctx context.Context, notificationID string) error {
	endpoint := fmt.Sprintf("/notifications/%s/read", url.PathEscape(notificationID))
	return c.doRequest(ctx, http.MethodPost, endpoint, nil, nil)
}

// Profile retrieves the authenticated user's profile.
func (c *BudsClient) Profile(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.doRequest(ctx, http.MethodGet, "/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
