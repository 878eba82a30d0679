// Package services implements the HTTP side of the player API.
//
// # Player Client
//
// [PlayerClient] issues the playlist commands (add, remove, rename, clear, add items, play) and the one-shot reads
// ([PlayerClient.Playlists], [PlayerClient.PlaylistItems]) used by the CLI and exports. It satisfies the model's
// command sink, so intents reach the player unchanged.
//
// # Update Stream
//
// [UpdatesSource] is the push data source. Every Watch opens GET /api/query/updates as a server-sent event stream:
//
//   - playlists topic: ?playlists=true
//   - playlistItems topic: ?playlistItems=true&plref={id}&plrange=0:1000&plcolumns={a,b,...}
//
// Watching a topic again cancels its previous stream. Events are decoded from the data lines and handed to the
// registered handlers one at a time from a single goroutine; events still queued from a replaced stream are dropped.
//
// # Raw Requests
//
// [APIService] performs unparsed GET/POST requests for debugging (plctl api get|post).
//
// # Error Handling
//
// Requests use the sentinel errors from the shared package:
//   - [shared.ErrAPIRequest] : non-2xx response, with the player's error message when it sends one
//   - [shared.ErrPlaylistNotFound] : 404 response, wrapped together with ErrAPIRequest
//   - [shared.ErrServiceUnavailable] : the player could not be reached
//   - [shared.ErrNoPlaylist] : a playlist command was issued without a playlist id
//   - [shared.ErrStreamClosed] : Watch after Close, or the player ended a stream
//
// All requests carry HTTP basic auth when a username is configured.
package services
