package playlist

import (
	"fmt"
	"slices"

	"github.com/desertthunder/plctl/internal/models"
)

const newPlaylistTitle = "New Playlist"

// NewPlaylistTitle returns "New Playlist", or the first "New Playlist (n)" not already taken.
func NewPlaylistTitle(playlists []models.Playlist) string {
	taken := func(title string) bool {
		return slices.ContainsFunc(playlists, func(p models.Playlist) bool { return p.Title == title })
	}

	if !taken(newPlaylistTitle) {
		return newPlaylistTitle
	}

	for n := 1; ; n++ {
		title := fmt.Sprintf("%s (%d)", newPlaylistTitle, n)
		if !taken(title) {
			return title
		}
	}
}
