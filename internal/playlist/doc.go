// Package playlist implements the client-side playlist selection model.
//
// The [Model] keeps "which playlists exist, which one is active and what items it holds" consistent while two
// independent snapshot streams arrive from a [DataSource]: the playlists topic and the playlistItems topic for the
// currently watched playlist. Local intents (select a playlist, toggle compact columns) and mutation commands
// forwarded to a [Client] are reconciled against those snapshots.
//
// # Transitions
//
// All reconciliation lives in pure functions of the form State × input → [Transition]:
//   - [ApplyPlaylists] : ingest a playlists snapshot, keeping or re-deriving the selection
//   - [SelectPlaylist] : explicit selection request
//   - [SelectColumns] : switch between the standard and compact column presets
//   - [ApplyItems] : ingest an items snapshot
//
// A Transition carries the next [State] plus flags telling the wrapper whether to notify observers and whether to
// re-issue the item subscription built by [ItemsRequestFor]. The [Model] applies transitions under its mutex, issues
// the watch, then notifies observers after releasing the lock so callbacks may read state through the accessors.
//
// # Observers
//
// Observers register per [Signal] with [Model.Observe] and receive no payload; they re-read state after each
// notification. [Model.Close] drops every registration and detaches the model from later snapshots.
//
// # Undefined input
//
// A playlists snapshot with duplicate ids, or with more than one entry flagged current, is undefined input. The
// transitions resolve lookups to the first match and report the ambiguity in [Transition.Ambiguous]; the model logs
// it at warn level.
package playlist
