package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/services"
	"github.com/desertthunder/spotibuds/internal/shared"
	tu "github.com/desertthunder/spotibuds/internal/testing"
)

// testConfig returns a config safe for tests: in-memory database and a
// resolved viewer identity.
func testConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Database.Path = ":memory:"
	config.Credentials.IdentityUserID = "me"
	config.Credentials.Username = "me"
	return config
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			client := &tu.MockClient{}
			api := &services.APIService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Client:     client,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.client != services.Client(client) {
				t.Error("expected client to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("client falls back to buds client", func(t *testing.T) {
			buds := services.NewBudsClient(services.BudsClientOpts{Token: "tok"})
			runner := NewRunner(RunnerOpts{Buds: buds})

			if runner.client != services.Client(buds) {
				t.Error("expected client to fall back to the buds client")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("saveToken", func(t *testing.T) {
		t.Run("persists token to config file", func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.toml")

			config := shared.DefaultConfig()
			if err := shared.SaveConfig(configPath, config); err != nil {
				t.Fatalf("failed to create test config: %v", err)
			}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: configPath,
			})

			if err := runner.saveToken("new_access_token"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loadedConfig, err := shared.LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}

			if loadedConfig.Credentials.AccessToken != "new_access_token" {
				t.Errorf("expected access token to be saved, got %s", loadedConfig.Credentials.AccessToken)
			}
		})

		t.Run("updates live client token", func(t *testing.T) {
			buds := services.NewBudsClient(services.BudsClientOpts{})
			runner := NewRunner(RunnerOpts{
				Config: shared.DefaultConfig(),
				Buds:   buds,
			})

			if err := runner.saveToken("live_token"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config.Credentials.AccessToken != "live_token" {
				t.Error("expected config to be updated in memory")
			}
		})

		t.Run("rejects empty token", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig()})

			err := runner.saveToken("")
			if err == nil {
				t.Fatal("expected error for empty token")
			}
		})

		t.Run("handles SaveConfig failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config:     shared.DefaultConfig(),
				ConfigPath: "/root/readonly/impossible/config.toml",
			})

			err := runner.saveToken("tok")
			if err == nil {
				t.Fatal("expected error with invalid path")
			}
			if !strings.Contains(err.Error(), "failed to save config") {
				t.Errorf("expected save config error, got %v", err)
			}
		})
	})

	t.Run("resolveViewer", func(t *testing.T) {
		t.Run("uses configured credentials", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: testConfig(),
				Client: &tu.MockClient{},
			})

			viewer, err := runner.resolveViewer(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if viewer.IdentityUserID != "me" {
				t.Errorf("expected configured identity, got %s", viewer.IdentityUserID)
			}
		})

		t.Run("falls back to profile endpoint", func(t *testing.T) {
			config := testConfig()
			config.Credentials.IdentityUserID = ""

			runner := NewRunner(RunnerOpts{
				Config: config,
				Client: &tu.MockClient{},
			})

			viewer, err := runner.resolveViewer(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if viewer.IdentityUserID != "mock-user" {
				t.Errorf("expected profile identity, got %s", viewer.IdentityUserID)
			}
		})
	})

	t.Run("ensureEngine", func(t *testing.T) {
		t.Run("builds engine once", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: testConfig(),
				Client: &tu.MockClient{},
				Output: &bytes.Buffer{},
			})

			engine, err := runner.ensureEngine(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if engine == nil {
				t.Fatal("expected engine to be built")
			}

			again, err := runner.ensureEngine(context.Background())
			if err != nil {
				t.Fatalf("expected no error on second call, got %v", err)
			}
			if again != engine {
				t.Error("expected engine to be reused")
			}
		})

		t.Run("fails without a client", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: testConfig()})

			if _, err := runner.ensureEngine(context.Background()); err == nil {
				t.Fatal("expected error without a backend client")
			}
		})
	})

	t.Run("loadPages", func(t *testing.T) {
		t.Run("aggregates pages until end of feed", func(t *testing.T) {
			mock := &tu.MockClient{
				FeedSlidesFunc: func(ctx context.Context, identityUserID string, limit, skip int) ([]models.Slide, error) {
					if skip > 0 {
						return nil, nil
					}
					return []models.Slide{
						{Kind: models.KindRecentSong, AuthorID: "u1", Song: &models.Song{ID: "s1", Title: "One"}},
						{Kind: models.KindRecentSong, AuthorID: "u2", Song: &models.Song{ID: "s2", Title: "Two"}},
					}, nil
				},
			}

			runner := NewRunner(RunnerOpts{
				Config: testConfig(),
				Client: mock,
				Output: &bytes.Buffer{},
			})

			engine, err := runner.ensureEngine(context.Background())
			if err != nil {
				t.Fatalf("failed to build engine: %v", err)
			}

			slides, err := runner.loadPages(context.Background(), engine, 3, false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(slides) != 2 {
				t.Errorf("expected 2 slides, got %d", len(slides))
			}
		})
	})
}
