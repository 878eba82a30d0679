package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/playlist"
	"github.com/desertthunder/plctl/internal/services"
	"github.com/desertthunder/plctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlayerClient is the typed player API: reads for one-shot commands and exports, commands for intents.
type PlayerClient interface {
	services.Service
	playlist.Client
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	loadConfig bool
	configured bool
	player     PlayerClient
	api        *services.APIService
	source     playlist.DataSource
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Player, Source and DB are built from the configuration when left nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Player     PlayerClient
	API        *services.APIService
	Source     playlist.DataSource
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	loadConfig := opts.Config == nil
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		loadConfig: loadConfig,
		player:     opts.Player,
		api:        opts.API,
		source:     opts.Source,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, playlistsCommand, itemsCommand, watchCommand, historyCommand, exportCommand,
		apiCommand, serveCommand, tuiCommand, openCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by subsequent commands.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// configure loads the configuration named by the --config flag, applies the global overrides and builds the
// player clients that were not injected. It is safe to call from every action.
func (r *Runner) configure(cmd *cli.Command) error {
	if r.configured {
		return nil
	}

	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.loadConfig && r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	if url := cmd.String("url"); url != "" {
		r.config.Player.URL = url
	}

	level := cmd.String("log-level")
	if level == "" {
		level = r.config.Log.Level
	}
	if level != "" {
		ll, err := shared.ParseLogLevel(level)
		if err != nil {
			return err
		}
		shared.SetLogLevel(r.logger, ll)
	}

	opts := services.OptsFromConfig(r.config.Player, r.httpClient, r.logger)
	if r.player == nil {
		r.player = services.NewPlayerClient(opts)
	}
	if r.api == nil {
		r.api = services.NewAPIService(opts)
	}

	r.configured = true
	return nil
}

// newSource returns the injected data source, or a new update stream client that the caller must close.
func (r *Runner) newSource() (playlist.DataSource, func()) {
	if r.source != nil {
		return r.source, func() {}
	}
	src := services.NewUpdatesSource(services.OptsFromConfig(r.config.Player, r.httpClient, r.logger))
	return src, src.Close
}

// journal returns the injected database, or opens the configured journal with its schema up to date.
func (r *Runner) journal() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}

	db, err := shared.OpenJournal(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

// resolvePlaylist finds a playlist by id, exact title, or one-based position.
// An empty ref resolves to the player's current playlist.
func (r *Runner) resolvePlaylist(ctx context.Context, ref string) (*models.Playlist, error) {
	playlists, err := r.player.Playlists(ctx)
	if err != nil {
		return nil, err
	}
	return findPlaylist(playlists, ref)
}

func findPlaylist(playlists []models.Playlist, ref string) (*models.Playlist, error) {
	if ref == "" {
		for i := range playlists {
			if playlists[i].IsCurrent {
				return &playlists[i], nil
			}
		}
		if len(playlists) > 0 {
			return &playlists[0], nil
		}
		return nil, shared.ErrNoPlaylist
	}

	for i := range playlists {
		if playlists[i].ID == ref {
			return &playlists[i], nil
		}
	}
	for i := range playlists {
		if playlists[i].Title == ref {
			return &playlists[i], nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(playlists) {
		return &playlists[n-1], nil
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, ref)
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
