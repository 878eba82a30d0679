package main

import (
	"context"

	"github.com/desertthunder/plctl/internal/formatter"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes the items of the named playlists (all when none are named) to files.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	format := cmd.String("format")
	if format == "" {
		format = r.config.Export.Format
	}
	f, err := formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     f,
		Preset:     models.PresetFor(cmd.Bool("compact")),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate-limit"),
	}
	if opts.NumWorkers == 0 {
		opts.NumWorkers = r.config.Export.Workers
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = r.config.Export.RateLimit
	}

	refs := cmd.Args().Slice()
	r.logger.Info("starting export", "playlists", len(refs), "format", f, "preset", opts.Preset)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPlaylists:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.FetchItems:
				r.writePlain("   %s\n", update.Message)
			case tasks.ExportPlaylist:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	engine := tasks.NewExportEngine(r.player, r.logger)
	result, err := engine.BulkExport(ctx, progressCh, refs, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d playlists\n", result.SuccessfulExports, result.TotalPlaylists)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d playlists:\n", result.FailedExports)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s: %v\n", res.PlaylistTitle, res.Error)
			}
		}
	}
	return nil
}
