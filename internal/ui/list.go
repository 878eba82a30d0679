package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/plctl/internal/models"
	"github.com/desertthunder/plctl/internal/shared"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Title }
func (i playlistItem) Title() string {
	if i.playlist.IsCurrent {
		return "▶ " + i.playlist.Title
	}
	return i.playlist.Title
}
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d items", i.playlist.ItemCount)
	if i.playlist.TotalTime > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.playlist.TotalTime))
	}
	return desc
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p}
	}
	return items
}
