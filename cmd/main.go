package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/spotibuds/internal/services"
	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	buds := services.NewBudsClient(services.BudsClientOpts{
		BaseURL:   config.Credentials.APIBaseURL,
		Token:     config.Credentials.AccessToken,
		RateLimit: config.Feed.RateLimit,
	})
	apiService := services.NewAPIService(config.Credentials.APIBaseURL, config.Credentials.AccessToken, nil)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Buds:       buds,
		API:        apiService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "buds",
		Usage:    "Browse your SpotiBuds friend feed from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
