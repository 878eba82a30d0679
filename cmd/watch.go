package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/desertthunder/plctl/internal/formatter"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/playlist"
	"github.com/desertthunder/plctl/internal/repositories"
	"github.com/urfave/cli/v3"
)

// watchEvent is the JSON line written per notification with --json.
type watchEvent struct {
	Signal            string                `json:"signal"`
	At                time.Time             `json:"at"`
	CurrentPlaylistID string                `json:"currentPlaylistId"`
	Columns           []string              `json:"columns,omitempty"`
	Playlists         []models.Playlist     `json:"playlists,omitempty"`
	Items             []models.PlaylistItem `json:"items,omitempty"`
}

// watchPrinter renders model notifications. Notifications may arrive from the update stream and from the command
// goroutine, so writes are serialized.
type watchPrinter struct {
	mu    sync.Mutex
	r     *Runner
	model *playlist.Model
	json  bool
}

func (p *watchPrinter) playlistsChanged() {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.model.State()
	if p.json {
		p.r.writeJSON(watchEvent{
			Signal:            playlist.PlaylistsChange.String(),
			At:                time.Now(),
			CurrentPlaylistID: state.CurrentID,
			Playlists:         state.Playlists,
		}, false)
		return
	}

	titles := make([]string, len(state.Playlists))
	for i, pl := range state.Playlists {
		if pl.ID == state.CurrentID {
			titles[i] = "[" + pl.Title + "]"
		} else {
			titles[i] = pl.Title
		}
	}
	p.r.writePlain("%s playlists: %s\n", time.Now().Format(time.TimeOnly), strings.Join(titles, "  "))
}

func (p *watchPrinter) itemsChanged() {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.model.State()
	if p.json {
		p.r.writeJSON(watchEvent{
			Signal:            playlist.ItemsChange.String(),
			At:                time.Now(),
			CurrentPlaylistID: state.CurrentID,
			Columns:           state.Columns.Expressions(),
			Items:             state.Items,
		}, false)
		return
	}

	title := state.CurrentID
	if current := state.CurrentPlaylist(); current != nil {
		title = current.Title
	}
	p.r.writePlain("%s items: %s (%d, %s)\n", time.Now().Format(time.TimeOnly), title, len(state.Items), state.Columns)
	if len(state.Items) == 0 {
		return
	}

	export := formatter.Export{Preset: state.Columns, Items: state.Items}
	p.r.writePlain("%s\n", formatter.Table(export.Headers(), export.Rows()))
}

// Watch follows the player's update stream and prints the playlists and the selected playlist's items whenever they
// change, until interrupted.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var selected string
	if ref := cmd.String("playlist"); ref != "" {
		p, err := r.resolvePlaylist(ctx, ref)
		if err != nil {
			return err
		}
		selected = p.ID
	}

	source, closeSource := r.newSource()
	defer closeSource()

	model := playlist.NewModel(playlist.ModelOpts{Client: r.player, Source: source, Logger: r.logger})
	defer model.Close()

	printer := &watchPrinter{r: r, model: model, json: cmd.Bool("json")}
	model.Observe(playlist.PlaylistsChange, printer.playlistsChanged)
	model.Observe(playlist.ItemsChange, printer.itemsChanged)

	var recorder *repositories.Recorder
	if cmd.Bool("record") {
		db, closeDB, err := r.journal()
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer closeDB()

		recorder = repositories.NewRecorder(repositories.NewSnapshotRepository(db), r.logger)
		recorder.Attach(model)
		defer recorder.Detach()
		r.logger.Info("recording snapshots", "path", r.config.Database.Path)
	}

	if err := model.Start(); err != nil {
		return err
	}
	if cmd.Bool("compact") {
		model.SetCompactMode(true)
	}
	if selected != "" {
		model.SetCurrentPlaylistID(selected)
	}

	r.logger.Info("watching player", "url", r.config.Player.URL)
	<-ctx.Done()

	if recorder != nil {
		r.logger.Info("recording stopped", "recorded", recorder.Recorded(), "failed", recorder.Failed())
	}
	return nil
}
