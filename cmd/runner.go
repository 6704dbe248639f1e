package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotibuds/internal/feed"
	"github.com/desertthunder/spotibuds/internal/hub"
	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/reactions"
	"github.com/desertthunder/spotibuds/internal/repositories"
	"github.com/desertthunder/spotibuds/internal/services"
	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/desertthunder/spotibuds/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     services.Client
	buds       *services.BudsClient
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	// db and engine are lazily initialized by the first command that
	// needs them; `buds api get /health` should not touch sqlite.
	db     *sql.DB
	engine *tasks.FeedEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     services.Client
	Buds       *services.BudsClient
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Client == nil && opts.Buds != nil {
		opts.Client = opts.Buds
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		buds:       opts.Buds,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger, used to redirect logs to a
// file while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, feedCommand, reactCommand, notifyCommand, watchCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ensureEngine lazily builds the feed engine and its dependencies. The
// sqlite-backed seen store and reaction log are optional; a database
// failure degrades to an engine without cross-session memory.
func (r *Runner) ensureEngine(ctx context.Context) (*tasks.FeedEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}
	if r.client == nil {
		return nil, fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}

	viewer, err := r.resolveViewer(ctx)
	if err != nil {
		return nil, err
	}

	var seen tasks.SeenTracker
	var rlog tasks.ReactionRecorder
	var seenMap map[string]int64

	if db, err := r.openDatabase(); err != nil {
		r.logger.Warn("database unavailable, seen history disabled", "error", err)
	} else {
		store := repositories.NewSeenStore(db, r.logger,
			repositories.WithSeenTTL(time.Duration(r.config.Feed.SeenTTLHours)*time.Hour))
		seen = store
		seenMap = store.Load()
		rlog = repositories.NewReactionLog(db)
	}

	cacheOpts := []reactions.Option{}
	if r.config.Feed.CacheCapacity > 0 {
		cacheOpts = append(cacheOpts, reactions.WithCapacity(r.config.Feed.CacheCapacity))
	}
	if r.config.Feed.CacheTTLMinutes > 0 {
		cacheOpts = append(cacheOpts, reactions.WithTTL(time.Duration(r.config.Feed.CacheTTLMinutes)*time.Minute))
	}

	r.engine = tasks.NewFeedEngine(tasks.FeedEngineOpts{
		Client:    r.client,
		Session:   feed.NewSession(shared.GenerateID(), r.config.Feed.ShuffleChunkSize, seenMap),
		Seen:      seen,
		Cache:     reactions.NewCache(cacheOpts...),
		Log:       rlog,
		Logger:    r.logger,
		Viewer:    viewer,
		PageLimit: r.config.Feed.PageLimit,
	})

	return r.engine, nil
}

// resolveViewer determines whose feed we are browsing. Configured
// credentials win; otherwise the backend's /me endpoint decides.
func (r *Runner) resolveViewer(ctx context.Context) (models.UserProfile, error) {
	creds := r.config.Credentials
	if creds.IdentityUserID != "" {
		return models.UserProfile{IdentityUserID: creds.IdentityUserID, Username: creds.Username}, nil
	}

	profile, err := r.client.Profile(ctx)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to resolve profile: %w", err)
	}
	return *profile, nil
}

func (r *Runner) openDatabase() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	r.db = db
	return db, nil
}

// hubClients builds the realtime push clients from config. Either may
// be nil when its endpoint is not configured.
func (r *Runner) hubClients(onState func(name string) hub.StateListener) (friends, notifs *hub.Client) {
	token := r.config.Credentials.AccessToken

	if url := r.config.Hubs.FriendsURL; url != "" {
		friends = hub.NewClient(hub.ClientOpts{
			Name:    "friends",
			URL:     url,
			Token:   token,
			Logger:  r.logger,
			OnState: onState("friends"),
		})
	}
	if url := r.config.Hubs.NotificationsURL; url != "" {
		notifs = hub.NewClient(hub.ClientOpts{
			Name:    "notifications",
			URL:     url,
			Token:   token,
			Logger:  r.logger,
			OnState: onState("notifications"),
		})
	}

	return friends, notifs
}

// saveToken updates the in-memory credentials and the live client, and
// persists the token to the config file when a path is configured.
func (r *Runner) saveToken(token string) error {
	if r.config == nil {
		return fmt.Errorf("config is nil")
	}
	if token == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrInvalidInput)
	}

	r.config.Credentials.AccessToken = token
	if r.buds != nil {
		r.buds.SetToken(token)
	}

	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
