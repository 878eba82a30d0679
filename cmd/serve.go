package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/plctl/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the in-memory stub player until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	player := server.NewPlayer()
	if cmd.Bool("demo") {
		if err := player.Seed(server.DemoTracks()); err != nil {
			return err
		}
	}

	srv := server.NewServer(server.ServerOpts{
		Addr:     addr,
		Username: r.config.Player.Username,
		Password: r.config.Player.Password,
		Player:   player,
		Logger:   r.logger,
	})

	r.logger.Info("stub player listening", "addr", addr, "playlists", len(player.Playlists()))
	return srv.ListenAndServe(ctx)
}
