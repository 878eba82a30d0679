package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/plctl/internal/formatter"
	"github.com/desertthunder/plctl/internal/playlist"
	"github.com/desertthunder/plctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints every playlist in player order.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	playlists, err := r.player.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists.\n")
	}

	rows := make([][]string, len(playlists))
	for i, p := range playlists {
		current := ""
		if p.IsCurrent {
			current = "▶"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1), p.ID, p.Title, strconv.Itoa(p.ItemCount), shared.FormatDuration(p.TotalTime), current,
		}
	}
	return r.writePlain("%s\n", formatter.Table([]string{"#", "ID", "Title", "Items", "Duration", ""}, rows))
}

// PlaylistsAdd creates a playlist. Without a title the next free "New Playlist" title is used.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	title := cmd.StringArg("title")
	if title == "" {
		playlists, err := r.player.Playlists(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch playlists: %w", err)
		}
		title = playlist.NewPlaylistTitle(playlists)
	}

	r.logger.Info("adding playlist", "title", title)
	if err := r.player.AddPlaylist(ctx, title); err != nil {
		return fmt.Errorf("failed to add playlist: %w", err)
	}
	return r.writePlain("✓ Added playlist %q\n", title)
}

// PlaylistsRemove removes a playlist.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	p, err := r.resolvePlaylist(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	r.logger.Info("removing playlist", "playlist", p.ID)
	if err := r.player.RemovePlaylist(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to remove playlist: %w", err)
	}
	return r.writePlain("✓ Removed playlist %q\n", p.Title)
}

// PlaylistsRename renames a playlist.
func (r *Runner) PlaylistsRename(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	p, err := r.resolvePlaylist(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	r.logger.Info("renaming playlist", "playlist", p.ID, "title", title)
	if err := r.player.RenamePlaylist(ctx, p.ID, title); err != nil {
		return fmt.Errorf("failed to rename playlist: %w", err)
	}
	return r.writePlain("✓ Renamed %q to %q\n", p.Title, title)
}

// PlaylistsClear removes every item from a playlist.
func (r *Runner) PlaylistsClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	p, err := r.resolvePlaylist(ctx, cmd.StringArg("playlist"))
	if err != nil {
		return err
	}

	r.logger.Info("clearing playlist", "playlist", p.ID)
	if err := r.player.ClearPlaylist(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to clear playlist: %w", err)
	}
	return r.writePlain("✓ Cleared playlist %q\n", p.Title)
}
