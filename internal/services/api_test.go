package services

import (
	"context"
	"io"
	"net/http"
	"testing"

	internaltesting "github.com/desertthunder/spotibuds/internal/testing"
)

func TestAPIService(t *testing.T) {
	ctx := context.Background()

	t.Run("Get returns parsed JSON", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(200, `{"status":"ok"}`), nil)
		api := NewAPIService("http://test.local", "tok", &http.Client{Transport: rt})

		resp, err := api.Get(ctx, "/health")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.IsJSON {
			t.Error("expected JSON response")
		}
		data, ok := resp.JSONData.(map[string]any)
		if !ok || data["status"] != "ok" {
			t.Errorf("unexpected JSON data %v", resp.JSONData)
		}
		if got := rt.Requests[0].Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
	})

	t.Run("Get with non-JSON body", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(200, `plain text`), nil)
		api := NewAPIService("http://test.local", "", &http.Client{Transport: rt})

		resp, err := api.Get(ctx, "/raw")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.IsJSON {
			t.Error("expected non-JSON response")
		}
		if string(resp.Body) != "plain text" {
			t.Errorf("unexpected body %q", resp.Body)
		}
		if rt.Requests[0].Header.Get("Authorization") != "" {
			t.Error("expected no auth header without token")
		}
	})

	t.Run("Post sends body and content type", func(t *testing.T) {
		rt := internaltesting.NewMockRoundTripper(jsonResponse(201, `{}`), nil)
		api := NewAPIService("http://test.local", "tok", &http.Client{Transport: rt})

		if _, err := api.Post(ctx, "/reactions", []byte(`{"emoji":"🔥"}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := rt.Requests[0]
		if req.Header.Get("Content-Type") != "application/json" {
			t.Error("expected JSON content type")
		}
		body, _ := io.ReadAll(req.Body)
		if string(body) != `{"emoji":"🔥"}` {
			t.Errorf("unexpected body %s", body)
		}
	})

	t.Run("default base URL", func(t *testing.T) {
		api := NewAPIService("", "", nil)
		if api.baseURL != defaultBaseURL {
			t.Errorf("expected default base URL, got %s", api.baseURL)
		}
	})
}
