package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spotibuds/internal/server"
	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin runs the browser OAuth2 authorization code flow against the
// SpotiBuds identity service. A loopback HTTP server receives the
// callback, the code is exchanged for a token, and the token is saved
// to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	timeout := time.Duration(cmd.Int("timeout")) * time.Second
	creds := r.config.Credentials

	if creds.ClientID == "" {
		return fmt.Errorf("%w: client_id not configured, run 'buds setup config'", shared.ErrMissingCredentials)
	}

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	redirect := creds.RedirectURI
	if redirect == "" {
		redirect = fmt.Sprintf("http://%s/callback", addr)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirect,
		Scopes:       []string{"feed", "reactions", "notifications"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  creds.APIBaseURL + "/oauth/authorize",
			TokenURL: creds.APIBaseURL + "/oauth/token",
		},
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(oauthConfig, state)

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Error("callback server failed", "error", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	authURL := oauthConfig.AuthCodeURL(state)
	r.logger.Info("waiting for OAuth callback", "addr", addr)
	r.writePlain("Opening browser for SpotiBuds login...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("Visit this URL to sign in:\n%s\n", authURL)
	}

	var result server.OAuthResult
	select {
	case result = <-handler.Result():
	case <-time.After(timeout):
		return fmt.Errorf("%w: no callback received within %v", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := result.Error(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := r.saveToken(result.Token.AccessToken); err != nil {
		r.logger.Warn("failed to persist token", "error", err)
	} else {
		r.logger.Info("token saved", "path", r.configPath)
	}

	return r.writePlain("✓ Signed in to SpotiBuds\n")
}

// AuthStatus checks the current authentication state by fetching the
// viewer's profile.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	if r.client == nil {
		return fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}

	profile, err := r.client.Profile(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			r.writePlain("Authentication: ✗ Not authenticated\n")
			r.writePlain("Run 'buds auth login' to sign in\n")
			return nil
		}
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	r.writePlain("Authentication: ✓ Authenticated\n")
	r.writePlain("User: %s (%s)\n", profile.Username, profile.IdentityUserID)
	if profile.DisplayName != "" {
		r.writePlain("Display name: %s\n", profile.DisplayName)
	}
	return nil
}
