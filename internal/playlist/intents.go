package playlist

import "context"

// The intents below forward to the [Client] with the current selection. None of them touches local state; the
// result comes back through the next snapshot.

// AddItems appends items (paths or URLs) to the selected playlist.
func (m *Model) AddItems(ctx context.Context, items []string) error {
	id := m.CurrentPlaylistID()
	m.logger.Debug("add items", "playlist", id, "count", len(items))
	return m.client.AddPlaylistItems(ctx, id, items)
}

// ActivateItem starts playback of the item at index in the selected playlist.
func (m *Model) ActivateItem(ctx context.Context, index int) error {
	id := m.CurrentPlaylistID()
	m.logger.Debug("activate item", "playlist", id, "index", index)
	return m.client.Play(ctx, id, index)
}

// AddPlaylist creates a playlist titled by [Model.NewPlaylistTitle].
func (m *Model) AddPlaylist(ctx context.Context) error {
	title := m.NewPlaylistTitle()
	m.logger.Debug("add playlist", "title", title)
	return m.client.AddPlaylist(ctx, title)
}

// RemovePlaylist removes the selected playlist.
func (m *Model) RemovePlaylist(ctx context.Context) error {
	id := m.CurrentPlaylistID()
	m.logger.Debug("remove playlist", "playlist", id)
	return m.client.RemovePlaylist(ctx, id)
}

// RenamePlaylist renames the selected playlist.
func (m *Model) RenamePlaylist(ctx context.Context, title string) error {
	id := m.CurrentPlaylistID()
	m.logger.Debug("rename playlist", "playlist", id, "title", title)
	return m.client.RenamePlaylist(ctx, id, title)
}

// ClearPlaylist removes every item from the selected playlist.
func (m *Model) ClearPlaylist(ctx context.Context) error {
	id := m.CurrentPlaylistID()
	m.logger.Debug("clear playlist", "playlist", id)
	return m.client.ClearPlaylist(ctx, id)
}
