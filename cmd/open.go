package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Open opens the player's web UI in the default browser.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	url := r.config.Player.URL
	r.logger.Info("opening player", "url", url)
	if err := shared.OpenBrowser(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return r.writePlain("Opened %s\n", url)
}
