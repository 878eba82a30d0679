// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a thin view over a [playlist.Model]:
//  1. [ItemsView] : Playlist tabs and the selected playlist's items in the active column preset
//  2. [PickerView] : Filterable playlist list for jumping to a playlist
//  3. [RenameView] : Text input for renaming the selected playlist
//  4. [ConfirmView] : Confirm removing or clearing a playlist
//
// The (view) [Model] never mutates playlist state itself. Selection and column changes go to the playlist model, and
// intents (play, add, remove, rename, clear) run as commands whose outcome arrives as a Msg. The playlist model's change
// notifications are bridged onto a buffered channel and delivered to Update as messages, so rendering always reflects the
// latest reconciled state.
//
// Keyboard navigation uses tab/shift+tab (or h/l) for playlists and j/k for items, with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
