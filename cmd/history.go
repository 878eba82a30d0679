package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/plctl/internal/formatter"
	"github.com/desertthunder/plctl/internal/repositories"
	"github.com/urfave/cli/v3"
)

// History lists journaled snapshots, or prints one snapshot's payload with --show.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.configure(cmd); err != nil {
		return err
	}

	db, closeDB, err := r.journal()
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer closeDB()

	repo := repositories.NewSnapshotRepository(db)

	if id := cmd.String("show"); id != "" {
		record, err := repo.Get(id)
		if err != nil {
			return err
		}
		var payload any
		if err := json.Unmarshal(record.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode payload: %w", err)
		}
		return r.writeJSON(payload, true)
	}

	records, err := repo.List(map[string]any{
		"topic":        cmd.String("topic"),
		"playlist_ref": cmd.String("playlist"),
		"limit":        int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type entry struct {
			ID          string    `json:"id"`
			Sequence    int       `json:"sequence"`
			Topic       string    `json:"topic"`
			PlaylistRef string    `json:"playlistRef"`
			Columns     []string  `json:"columns,omitempty"`
			ItemCount   int       `json:"itemCount"`
			ReceivedAt  time.Time `json:"receivedAt"`
		}
		entries := make([]entry, len(records))
		for i, rec := range records {
			entries[i] = entry{rec.ID(), rec.Sequence, string(rec.Topic), rec.PlaylistRef, rec.Columns, rec.ItemCount, rec.ReceivedAt}
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		return r.writePlain("No snapshots recorded. Run 'plctl watch --record' to start a journal.\n")
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = []string{
			strconv.Itoa(rec.Sequence),
			rec.ReceivedAt.Local().Format(time.DateTime),
			string(rec.Topic),
			rec.PlaylistRef,
			strconv.Itoa(rec.ItemCount),
			rec.ID(),
		}
	}
	return r.writePlain("%s\n", formatter.Table([]string{"Seq", "Received", "Topic", "Playlist", "Count", "ID"}, rows))
}
