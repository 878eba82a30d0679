package playlist

import (
	"fmt"

	"github.com/desertthunder/plctl/internal/models"
)

// Transition is the result of applying one input to a [State].
type Transition struct {
	State           State
	NotifyPlaylists bool     // fire [PlaylistsChange]
	NotifyItems     bool     // fire [ItemsChange]
	Resubscribe     bool     // re-issue the item subscription, skipped when no playlist is selected
	Ambiguous       []string // undefined-input findings in the snapshot
}

// Changed reports whether the transition has any observable effect.
func (t Transition) Changed() bool {
	return t.NotifyPlaylists || t.NotifyItems || t.Resubscribe
}

// ApplyPlaylists ingests a playlists snapshot.
//
// A selection still present in the snapshot is kept without re-subscribing. Otherwise the entry flagged current is
// adopted, or the selection cleared when none is, and the item subscription is re-issued.
func ApplyPlaylists(s State, snapshot []models.Playlist) Transition {
	next := s
	next.Playlists = snapshot

	t := Transition{NotifyPlaylists: true, Ambiguous: ambiguities(snapshot)}

	if next.CurrentID == "" || indexOf(snapshot, next.CurrentID) < 0 {
		next.CurrentID = ""
		for _, p := range snapshot {
			if p.IsCurrent {
				next.CurrentID = p.ID
				break
			}
		}
		t.Resubscribe = true
	}

	t.State = next
	return t
}

// SelectPlaylist handles an explicit selection request. Selecting the current id is a no-op.
func SelectPlaylist(s State, id string) Transition {
	if id == s.CurrentID {
		return Transition{State: s}
	}

	next := s
	next.CurrentID = id
	return Transition{State: next, NotifyPlaylists: true, Resubscribe: true}
}

// SelectColumns switches to the compact or standard preset. Requesting the active preset is a no-op.
//
// No observer is notified; the items for the new columns arrive through the re-subscription.
func SelectColumns(s State, compact bool) Transition {
	preset := models.PresetFor(compact)
	if preset == s.Columns {
		return Transition{State: s}
	}

	next := s
	next.Columns = preset
	return Transition{State: next, Resubscribe: true}
}

// ApplyItems replaces the items unconditionally. Items are not checked against the selection.
func ApplyItems(s State, items []models.PlaylistItem) Transition {
	next := s
	next.Items = items
	return Transition{State: next, NotifyItems: true}
}

// ItemsRequestFor derives the item subscription for s. ok is false when no playlist is selected.
func ItemsRequestFor(s State) (req models.ItemsRequest, ok bool) {
	if s.CurrentID == "" {
		return models.ItemsRequest{}, false
	}

	return models.ItemsRequest{
		FetchItems:  true,
		PlaylistRef: s.CurrentID,
		Range:       models.ItemsRange,
		Columns:     s.Columns.Expressions(),
	}, true
}

func ambiguities(snapshot []models.Playlist) []string {
	var found []string

	seen := make(map[string]int, len(snapshot))
	current := 0
	for _, p := range snapshot {
		seen[p.ID]++
		if seen[p.ID] == 2 {
			found = append(found, fmt.Sprintf("duplicate playlist id %q", p.ID))
		}
		if p.IsCurrent {
			current++
		}
	}

	if current > 1 {
		found = append(found, fmt.Sprintf("%d playlists flagged current", current))
	}
	return found
}
