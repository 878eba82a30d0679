package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plctl/internal/playlist"
	"github.com/desertthunder/plctl/internal/shared"
	"github.com/desertthunder/plctl/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI over a live playlist model.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	source, closeSource := r.newSource()
	defer closeSource()

	model := playlist.NewModel(playlist.ModelOpts{Client: r.player, Source: source, Logger: r.logger})
	defer model.Close()

	view := ui.NewModel(ctx, model)
	defer view.Close()

	if err := model.Start(); err != nil {
		return err
	}
	if cmd.Bool("compact") {
		model.SetCompactMode(true)
	}

	p := tea.NewProgram(view, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
