package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/plctl/internal/formatter"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// ItemsList prints a playlist's items in the chosen column preset and format.
func (r *Runner) ItemsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	p, err := r.resolvePlaylist(ctx, cmd.String("playlist"))
	if err != nil {
		return err
	}

	preset := models.PresetFor(cmd.Bool("compact"))
	page, err := r.player.PlaylistItems(ctx, p.ID, cmd.String("range"), preset.Expressions())
	if err != nil {
		return fmt.Errorf("failed to fetch items: %w", err)
	}

	r.logger.Debug("fetched items", "playlist", p.ID, "count", len(page.Items), "total", page.TotalCount)

	data, err := formatter.Render(&formatter.Export{
		Playlist:   *p,
		Preset:     preset,
		Items:      page.Items,
		ExportedAt: time.Now(),
	}, f)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if page.TotalCount > page.Offset+len(page.Items) {
		r.writePlain("\n(showing %d of %d items)\n", len(page.Items), page.TotalCount)
	}
	return nil
}

// ItemsAdd appends paths or URLs to a playlist.
func (r *Runner) ItemsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	items := cmd.Args().Slice()
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one item path or URL", shared.ErrMissingArgument)
	}

	p, err := r.resolvePlaylist(ctx, cmd.String("playlist"))
	if err != nil {
		return err
	}

	r.logger.Info("adding items", "playlist", p.ID, "count", len(items))
	if err := r.player.AddPlaylistItems(ctx, p.ID, items); err != nil {
		return fmt.Errorf("failed to add items: %w", err)
	}
	return r.writePlain("✓ Added %d items to %q\n", len(items), p.Title)
}

// ItemsPlay starts playback of the item at a zero-based index.
func (r *Runner) ItemsPlay(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	index := int(cmd.Int("index"))
	p, err := r.resolvePlaylist(ctx, cmd.String("playlist"))
	if err != nil {
		return err
	}

	r.logger.Info("playing item", "playlist", p.ID, "index", index)
	if err := r.player.Play(ctx, p.ID, index); err != nil {
		return fmt.Errorf("failed to play item: %w", err)
	}
	return r.writePlain("▶ Playing item %d of %q\n", index, p.Title)
}
