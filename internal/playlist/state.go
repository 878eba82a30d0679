package playlist

import (
	"slices"

	"github.com/desertthunder/plctl/internal/models"
)

// State is the reconciled client-side view.
//
// CurrentID is empty when no playlist is selected. Items reflects the most recently issued item subscription and may
// briefly lag behind CurrentID while a re-subscription is in flight.
type State struct {
	Playlists []models.Playlist
	Items     []models.PlaylistItem
	CurrentID string
	Columns   models.ColumnPreset
}

// CurrentPlaylist returns a copy of the playlist whose ID equals CurrentID, or nil when there is none.
func (s State) CurrentPlaylist() *models.Playlist {
	if s.CurrentID == "" {
		return nil
	}
	if i := indexOf(s.Playlists, s.CurrentID); i >= 0 {
		p := s.Playlists[i]
		return &p
	}
	return nil
}

// Clone returns a copy of s that shares no slices with it.
func (s State) Clone() State {
	s.Playlists = slices.Clone(s.Playlists)
	s.Items = slices.Clone(s.Items)
	return s
}

func indexOf(playlists []models.Playlist, id string) int {
	return slices.IndexFunc(playlists, func(p models.Playlist) bool { return p.ID == id })
}
